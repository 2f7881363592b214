package client

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Command specification
// --------------------------------------------------------------------------

// CommandSpec declares a store command: its name, its output type T and how many
// arguments it takes. All commands of the catalogue below are CommandSpecs.
type CommandSpec[T any] struct {
	Name string
	// Arity is the number of required arguments (without the name)
	Arity int
	// Variadic allows more than Arity arguments
	Variadic bool
}

// New builds the command for the given client. An arity mismatch is reported as
// *common.EncodingError when the command is executed or queued.
func (s CommandSpec[T]) New(c *Client, args ...any) *Cmd[T] {
	if err := s.checkArity(len(args)); err != nil {
		return &Cmd[T]{client: c, command: common.NewCommand(s.Name), err: err}
	}
	return newCmd[T](c, s.Name, args...)
}

// Info returns the type-erased description of the spec
func (s CommandSpec[T]) Info() CommandInfo {
	return CommandInfo{
		Name:     s.Name,
		Arity:    s.Arity,
		Variadic: s.Variadic,
		Output:   reflect.TypeOf((*T)(nil)).Elem().String(),
	}
}

func (s CommandSpec[T]) checkArity(n int) error {
	return s.Info().CheckArity(n)
}

// CommandInfo is the type-erased form of a CommandSpec
type CommandInfo struct {
	Name     string
	Arity    int
	Variadic bool
	Output   string
}

// CheckArity checks if n arguments are valid for the command
func (i CommandInfo) CheckArity(n int) error {
	if n == i.Arity || (i.Variadic && n > i.Arity) {
		return nil
	}
	expected := fmt.Sprintf("%d", i.Arity)
	if i.Variadic {
		expected = fmt.Sprintf("at least %d", i.Arity)
	}
	return &common.EncodingError{
		Value:  i.Name,
		Reason: fmt.Sprintf("%s expects %s argument(s), got %d", i.Name, expected, n),
	}
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// registry holds all forms of a command by name. A command has more than one
// form if its output type depends on the arguments (e.g. SPOP with a count).
var registry = xsync.NewMapOf[string, []CommandInfo]()

// register adds the spec to the registry and returns it unchanged
func register[T any](s CommandSpec[T]) CommandSpec[T] {
	info := s.Info()
	registry.Compute(strings.ToUpper(s.Name), func(forms []CommandInfo, _ bool) ([]CommandInfo, bool) {
		return append(forms, info), false
	})
	return s
}

// Lookup returns the forms of a catalogued command (case-insensitive)
func Lookup(name string) ([]CommandInfo, bool) {
	forms, ok := registry.Load(strings.ToUpper(name))
	if !ok {
		return nil, false
	}
	return slices.Clone(forms), true
}

// CheckArity checks n arguments against all forms of the named command.
// Unknown commands are accepted, they are sent as they are.
func CheckArity(name string, n int) error {
	forms, ok := Lookup(name)
	if !ok {
		return nil
	}
	var err error
	for _, info := range forms {
		if err = info.CheckArity(n); err == nil {
			return nil
		}
	}
	return err
}

// Commands returns all forms of all catalogued commands sorted by name and arity
func Commands() []CommandInfo {
	var infos []CommandInfo
	registry.Range(func(_ string, forms []CommandInfo) bool {
		infos = append(infos, forms...)
		return true
	})
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Arity < infos[j].Arity
	})
	return infos
}

// --------------------------------------------------------------------------
// Catalogue
// --------------------------------------------------------------------------

// Missing keys or fields are returned as nil by commands with a pointer output type.

// generic
var (
	Exists = register(CommandSpec[int64]{Name: "EXISTS", Arity: 1, Variadic: true})
	Del    = register(CommandSpec[int64]{Name: "DEL", Arity: 1, Variadic: true})
	Expire = register(CommandSpec[int64]{Name: "EXPIRE", Arity: 2, Variadic: true})
	TTL    = register(CommandSpec[int64]{Name: "TTL", Arity: 1})
	Type   = register(CommandSpec[string]{Name: "TYPE", Arity: 1})
)

// string
var (
	Get         = register(CommandSpec[*string]{Name: "GET", Arity: 1})
	Set         = register(CommandSpec[*string]{Name: "SET", Arity: 2, Variadic: true})
	GetDel      = register(CommandSpec[*string]{Name: "GETDEL", Arity: 1})
	Append      = register(CommandSpec[int64]{Name: "APPEND", Arity: 2})
	StrLen      = register(CommandSpec[int64]{Name: "STRLEN", Arity: 1})
	Incr        = register(CommandSpec[int64]{Name: "INCR", Arity: 1})
	IncrBy      = register(CommandSpec[int64]{Name: "INCRBY", Arity: 2})
	IncrByFloat = register(CommandSpec[string]{Name: "INCRBYFLOAT", Arity: 2})
	Decr        = register(CommandSpec[int64]{Name: "DECR", Arity: 1})
	DecrBy      = register(CommandSpec[int64]{Name: "DECRBY", Arity: 2})
	MGet        = register(CommandSpec[[]*string]{Name: "MGET", Arity: 1, Variadic: true})
)

// hash
var (
	HGet    = register(CommandSpec[*string]{Name: "HGET", Arity: 2})
	HSet    = register(CommandSpec[int64]{Name: "HSET", Arity: 3, Variadic: true})
	HDel    = register(CommandSpec[int64]{Name: "HDEL", Arity: 2, Variadic: true})
	HExists = register(CommandSpec[int64]{Name: "HEXISTS", Arity: 2})
	HGetAll = register(CommandSpec[[]string]{Name: "HGETALL", Arity: 1})
	HLen    = register(CommandSpec[int64]{Name: "HLEN", Arity: 1})
	HKeys   = register(CommandSpec[[]string]{Name: "HKEYS", Arity: 1})
)

// set. SPOP has two forms: SPop returns one member (nil for an empty set),
// SPopCount takes a count and returns an array.
var (
	SAdd      = register(CommandSpec[int64]{Name: "SADD", Arity: 2, Variadic: true})
	SRem      = register(CommandSpec[int64]{Name: "SREM", Arity: 2, Variadic: true})
	SPop      = register(CommandSpec[*string]{Name: "SPOP", Arity: 1})
	SMembers  = register(CommandSpec[[]string]{Name: "SMEMBERS", Arity: 1})
	SCard     = register(CommandSpec[int64]{Name: "SCARD", Arity: 1})
	SIsMember = register(CommandSpec[int64]{Name: "SISMEMBER", Arity: 2})

	// SPopCount is SPOP with a count, which returns an array instead of a single member
	SPopCount = register(CommandSpec[[]string]{Name: "SPOP", Arity: 2})
)

// list
var (
	LPush  = register(CommandSpec[int64]{Name: "LPUSH", Arity: 2, Variadic: true})
	RPush  = register(CommandSpec[int64]{Name: "RPUSH", Arity: 2, Variadic: true})
	LPop   = register(CommandSpec[*string]{Name: "LPOP", Arity: 1})
	RPop   = register(CommandSpec[*string]{Name: "RPOP", Arity: 1})
	LLen   = register(CommandSpec[int64]{Name: "LLEN", Arity: 1})
	LRange = register(CommandSpec[[]string]{Name: "LRANGE", Arity: 3})
)

// sorted set
var (
	ZAdd   = register(CommandSpec[int64]{Name: "ZADD", Arity: 3, Variadic: true})
	ZScore = register(CommandSpec[*string]{Name: "ZSCORE", Arity: 2})
	ZCard  = register(CommandSpec[int64]{Name: "ZCARD", Arity: 1})
)

// streams
var (
	XDel = register(CommandSpec[int64]{Name: "XDEL", Arity: 2, Variadic: true})
)

// connection, server and scripting
var (
	Ping   = register(CommandSpec[string]{Name: "PING", Arity: 0, Variadic: true})
	Echo   = register(CommandSpec[string]{Name: "ECHO", Arity: 1})
	DBSize = register(CommandSpec[int64]{Name: "DBSIZE", Arity: 0})
	Eval   = register(CommandSpec[common.Value]{Name: "EVAL", Arity: 2, Variadic: true})
)
