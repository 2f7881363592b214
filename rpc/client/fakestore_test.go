package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

// fakeStore is an in-memory store that speaks the REST protocol on "/",
// "/pipeline" and "/multi-exec". It implements the commands used by the tests.
type fakeStore struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	ttls    map[string]int64

	requests atomic.Int64
	lastPath atomic.Value
}

// newFakeStore starts a fake store and returns it with a connected client
func newFakeStore(t *testing.T) (*fakeStore, *Client) {
	t.Helper()
	fs := &fakeStore{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		sets:    make(map[string]map[string]struct{}),
		ttls:    make(map[string]int64),
	}
	server := httptest.NewServer(fs)
	t.Cleanup(server.Close)

	c, err := Connect(server.URL, testToken)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return fs, c
}

// newRawServer starts a server that answers every request with status and body
func newRawServer(t *testing.T, status int, body string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	c, err := Connect(server.URL, testToken)
	require.NoError(t, err)
	return c
}

func (fs *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.requests.Add(1)
	fs.lastPath.Store(r.URL.Path)

	if r.Method != http.MethodPost {
		writeEnvelope(w, http.StatusMethodNotAllowed, nil, fmt.Errorf("method not allowed"))
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeEnvelope(w, http.StatusUnauthorized, nil, fmt.Errorf("Unauthorized"))
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	switch r.URL.Path {
	case "/":
		var cmd []any
		if err := dec.Decode(&cmd); err != nil || len(cmd) == 0 {
			writeEnvelope(w, http.StatusBadRequest, nil, fmt.Errorf("ERR failed to parse command"))
			return
		}
		fs.mu.Lock()
		result, err := fs.exec(cmd)
		fs.mu.Unlock()
		if err != nil {
			writeEnvelope(w, http.StatusBadRequest, nil, err)
			return
		}
		writeEnvelope(w, http.StatusOK, result, nil)

	case "/pipeline", "/multi-exec":
		var cmds [][]any
		if err := dec.Decode(&cmds); err != nil || len(cmds) == 0 {
			writeEnvelope(w, http.StatusBadRequest, nil, fmt.Errorf("ERR failed to parse batch"))
			return
		}

		isTx := r.URL.Path == "/multi-exec"
		if isTx {
			for _, cmd := range cmds {
				if !known(cmd) {
					writeEnvelope(w, http.StatusBadRequest, nil, fmt.Errorf("ERR EXECABORT Transaction discarded because of previous errors."))
					return
				}
			}
		}

		fs.mu.Lock()
		envelopes := make([]json.RawMessage, len(cmds))
		for i, cmd := range cmds {
			result, err := fs.exec(cmd)
			envelopes[i] = encodeEnvelope(result, err)
		}
		fs.mu.Unlock()

		if isTx {
			writeJSON(w, http.StatusOK, map[string]any{"result": envelopes})
			return
		}
		writeJSON(w, http.StatusOK, envelopes)

	default:
		writeEnvelope(w, http.StatusNotFound, nil, fmt.Errorf("not found"))
	}
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

var fakeCommands = map[string]bool{
	"PING": true, "ECHO": true, "SET": true, "GET": true, "GETDEL": true, "DEL": true,
	"EXISTS": true, "EXPIRE": true, "TTL": true, "INCR": true, "INCRBY": true,
	"INCRBYFLOAT": true, "STRLEN": true, "HSET": true, "HGET": true, "HDEL": true, "EVAL": true,
	"SADD": true, "SPOP": true,
}

func known(cmd []any) bool {
	if len(cmd) == 0 {
		return false
	}
	name, ok := cmd[0].(string)
	return ok && fakeCommands[strings.ToUpper(name)]
}

var (
	errWrongType = fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")
	errNotInt    = fmt.Errorf("ERR value is not an integer or out of range")
	errNotFloat  = fmt.Errorf("ERR value is not a valid float")
)

// exec runs one command, the caller holds fs.mu
func (fs *fakeStore) exec(cmd []any) (any, error) {
	if !known(cmd) {
		return nil, fmt.Errorf("ERR unknown command '%v'", cmd[0])
	}
	name := strings.ToUpper(cmd[0].(string))
	args := make([]string, len(cmd)-1)
	for i, a := range cmd[1:] {
		args[i] = argString(a)
	}
	wrongArgs := fmt.Errorf("ERR wrong number of arguments for '%s' command", strings.ToLower(name))

	switch name {
	case "PING":
		if len(args) > 0 {
			return args[0], nil
		}
		return "PONG", nil

	case "ECHO":
		if len(args) != 1 {
			return nil, wrongArgs
		}
		return args[0], nil

	case "SET":
		if len(args) < 2 {
			return nil, wrongArgs
		}
		key, value := args[0], args[1]
		nx, ex := false, int64(0)
		for i := 2; i < len(args); i++ {
			switch strings.ToUpper(args[i]) {
			case "NX":
				nx = true
			case "EX":
				if i+1 >= len(args) {
					return nil, fmt.Errorf("ERR syntax error")
				}
				n, err := strconv.ParseInt(args[i+1], 10, 64)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("ERR invalid expire time in 'set' command")
				}
				ex = n
				i++
			default:
				return nil, fmt.Errorf("ERR syntax error")
			}
		}
		if nx && fs.exists(key) {
			return nil, nil
		}
		fs.del(key)
		fs.strings[key] = value
		if ex > 0 {
			fs.ttls[key] = ex
		}
		return "OK", nil

	case "GET", "GETDEL":
		if len(args) != 1 {
			return nil, wrongArgs
		}
		if _, ok := fs.hashes[args[0]]; ok {
			return nil, errWrongType
		}
		v, ok := fs.strings[args[0]]
		if !ok {
			return nil, nil
		}
		if name == "GETDEL" {
			fs.del(args[0])
		}
		return v, nil

	case "DEL", "EXISTS":
		if len(args) == 0 {
			return nil, wrongArgs
		}
		n := int64(0)
		for _, key := range args {
			if fs.exists(key) {
				n++
				if name == "DEL" {
					fs.del(key)
				}
			}
		}
		return n, nil

	case "EXPIRE":
		if len(args) != 2 {
			return nil, wrongArgs
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, errNotInt
		}
		if !fs.exists(args[0]) {
			return int64(0), nil
		}
		if n <= 0 {
			fs.del(args[0])
		} else {
			fs.ttls[args[0]] = n
		}
		return int64(1), nil

	case "TTL":
		if len(args) != 1 {
			return nil, wrongArgs
		}
		if !fs.exists(args[0]) {
			return int64(-2), nil
		}
		if ttl, ok := fs.ttls[args[0]]; ok {
			return ttl, nil
		}
		return int64(-1), nil

	case "INCR", "INCRBY":
		by := int64(1)
		if name == "INCRBY" {
			if len(args) != 2 {
				return nil, wrongArgs
			}
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return nil, errNotInt
			}
			by = n
		} else if len(args) != 1 {
			return nil, wrongArgs
		}
		if _, ok := fs.hashes[args[0]]; ok {
			return nil, errWrongType
		}
		current := int64(0)
		if v, ok := fs.strings[args[0]]; ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, errNotInt
			}
			current = n
		}
		current += by
		fs.strings[args[0]] = strconv.FormatInt(current, 10)
		return current, nil

	case "INCRBYFLOAT":
		if len(args) != 2 {
			return nil, wrongArgs
		}
		by, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, errNotFloat
		}
		current := 0.0
		if v, ok := fs.strings[args[0]]; ok {
			current, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errNotFloat
			}
		}
		result := strconv.FormatFloat(current+by, 'f', -1, 64)
		fs.strings[args[0]] = result
		return result, nil

	case "STRLEN":
		if len(args) != 1 {
			return nil, wrongArgs
		}
		return int64(len(fs.strings[args[0]])), nil

	case "HSET":
		if len(args) < 3 || len(args)%2 != 1 {
			return nil, wrongArgs
		}
		if _, ok := fs.strings[args[0]]; ok {
			return nil, errWrongType
		}
		h, ok := fs.hashes[args[0]]
		if !ok {
			h = make(map[string]string)
			fs.hashes[args[0]] = h
		}
		added := int64(0)
		for i := 1; i < len(args); i += 2 {
			if _, exists := h[args[i]]; !exists {
				added++
			}
			h[args[i]] = args[i+1]
		}
		return added, nil

	case "HGET":
		if len(args) != 2 {
			return nil, wrongArgs
		}
		v, ok := fs.hashes[args[0]][args[1]]
		if !ok {
			return nil, nil
		}
		return v, nil

	case "HDEL":
		if len(args) < 2 {
			return nil, wrongArgs
		}
		h := fs.hashes[args[0]]
		removed := int64(0)
		for _, field := range args[1:] {
			if _, ok := h[field]; ok {
				delete(h, field)
				removed++
			}
		}
		if h != nil && len(h) == 0 {
			delete(fs.hashes, args[0])
		}
		return removed, nil

	case "SADD":
		if len(args) < 2 {
			return nil, wrongArgs
		}
		set, ok := fs.sets[args[0]]
		if !ok {
			set = make(map[string]struct{})
			fs.sets[args[0]] = set
		}
		added := int64(0)
		for _, member := range args[1:] {
			if _, exists := set[member]; !exists {
				set[member] = struct{}{}
				added++
			}
		}
		return added, nil

	case "SPOP":
		if len(args) < 1 || len(args) > 2 {
			return nil, wrongArgs
		}
		if len(args) == 1 {
			popped := fs.spop(args[0], 1)
			if len(popped) == 0 {
				return nil, nil
			}
			return popped[0], nil
		}
		count, err := strconv.Atoi(args[1])
		if err != nil || count < 0 {
			return nil, errNotInt
		}
		return fs.spop(args[0], count), nil

	case "EVAL":
		if len(args) != 4 || args[0] != deleteIfEqualsScript || args[1] != "1" {
			return nil, fmt.Errorf("ERR unsupported script")
		}
		if v, ok := fs.strings[args[2]]; ok && v == args[3] {
			fs.del(args[2])
			return int64(1), nil
		}
		return int64(0), nil
	}
	return nil, fmt.Errorf("ERR unknown command '%s'", name)
}

func (fs *fakeStore) exists(key string) bool {
	_, isString := fs.strings[key]
	_, isHash := fs.hashes[key]
	_, isSet := fs.sets[key]
	return isString || isHash || isSet
}

// spop removes up to count members of a set in sorted order
func (fs *fakeStore) spop(key string, count int) []string {
	set := fs.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Strings(members)
	if count < len(members) {
		members = members[:count]
	}
	for _, m := range members {
		delete(set, m)
	}
	if set != nil && len(set) == 0 {
		delete(fs.sets, key)
	}
	return members
}

func (fs *fakeStore) del(key string) {
	delete(fs.strings, key)
	delete(fs.hashes, key)
	delete(fs.sets, key)
	delete(fs.ttls, key)
}

func (fs *fakeStore) set(key, value string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.strings[key] = value
}

func (fs *fakeStore) get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.strings[key]
	return v, ok
}

// --------------------------------------------------------------------------
// Wire helpers
// --------------------------------------------------------------------------

func argString(a any) string {
	switch x := a.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

func encodeEnvelope(result any, err error) json.RawMessage {
	var env any
	if err != nil {
		env = map[string]string{"error": err.Error()}
	} else {
		env = map[string]any{"result": result}
	}
	b, _ := json.Marshal(env)
	return b
}

func writeEnvelope(w http.ResponseWriter, status int, result any, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(encodeEnvelope(result, err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
