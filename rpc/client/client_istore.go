package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/restkv/lib/store"
	"github.com/ValentinKolb/restkv/rpc/common"
)

// deleteIfEqualsScript deletes KEYS[1] if its value equals ARGV[1]
const deleteIfEqualsScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// NewRPCStore creates a store.IStore that forwards all operations to the store
// the client is connected to.
func NewRPCStore(c *Client) store.IStore {
	return &rpcStore{client: c}
}

type rpcStore struct {
	client *Client
}

// setCmd builds SET key value [EX expireIn] [NX]
func (s *rpcStore) setCmd(key string, value []byte, expireIn uint64, ifUnset bool) *Cmd[*string] {
	cmd := Set.New(s.client, key, value)
	if expireIn > 0 {
		cmd.Args("EX", expireIn)
	}
	if ifUnset {
		cmd.Arg("NX")
	}
	return cmd
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (s *rpcStore) Set(ctx context.Context, key string, value []byte) (err error) {
	_, err = s.setCmd(key, value, 0, false).Exec(ctx)
	return err
}

func (s *rpcStore) SetE(ctx context.Context, key string, value []byte, expireIn uint64) (err error) {
	_, err = s.setCmd(key, value, expireIn, false).Exec(ctx)
	return err
}

func (s *rpcStore) SetEIfUnset(ctx context.Context, key string, value []byte, expireIn uint64) (set bool, err error) {
	// SET ... NX answers with nil if the key exists
	ok, err := s.setCmd(key, value, expireIn, true).Exec(ctx)
	if err != nil {
		return false, err
	}
	return ok != nil, nil
}

func (s *rpcStore) SetMany(ctx context.Context, entries []store.Entry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	tx := s.client.Transaction()
	for _, e := range entries {
		if e.Key == "" {
			return store.NewError(store.RetCInvalidOperation, "empty key in SetMany", nil)
		}
		tx.Add(s.setCmd(e.Key, e.Value, e.ExpireIn, false))
	}

	resps, err := tx.Send(ctx)
	if err != nil {
		return err
	}
	for i, resp := range resps {
		if err := resp.Err(); err != nil {
			return store.NewError(store.RetCInternalError, fmt.Sprintf("set %q", entries[i].Key), err)
		}
	}
	return nil
}

func (s *rpcStore) Expire(ctx context.Context, key string, expireIn uint64) (found bool, err error) {
	n, err := Expire.New(s.client, key, expireIn).Exec(ctx)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *rpcStore) Delete(ctx context.Context, key string) (err error) {
	_, err = Del.New(s.client, key).Exec(ctx)
	return err
}

func (s *rpcStore) DeleteIfEquals(ctx context.Context, key string, value []byte) (deleted bool, err error) {
	result, err := Eval.New(s.client, deleteIfEqualsScript, 1, key, value).Exec(ctx)
	if err != nil {
		return false, err
	}

	var n int64
	if err := common.Decode(result, &n); err != nil {
		return false, store.NewError(store.RetCUnexpectedResult, "delete if equals", err)
	}
	return n == 1, nil
}

func (s *rpcStore) Get(ctx context.Context, key string) (value []byte, loaded bool, err error) {
	v, err := Get.New(s.client, key).Exec(ctx)
	if err != nil || v == nil {
		return nil, false, err
	}
	return []byte(*v), true, nil
}

func (s *rpcStore) Has(ctx context.Context, key string) (loaded bool, err error) {
	n, err := Exists.New(s.client, key).Exec(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
