// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/kv"
	"github.com/nucleonfinance/xcfx/stackedmap"
)

const (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")

	cacheSize = 4096
)

// ErrInsufficientBalance is returned when a debit exceeds the account balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

type (
	balanceKey cfx.Address
	storageKey struct {
		addr cfx.Address
		key  cfx.Bytes32
	}
)

// State manages balances and contract storage.
// Changes are kept in revisions and written to the backing store by Commit.
type State struct {
	db    kv.Getter  // nil for a state only living in memory
	cache *lru.Cache // committed values loaded from db
	sm    *stackedmap.StackedMap[any, any]
}

// New create state object backed by db. db can be nil.
func New(db kv.Getter) *State {
	cache, _ := lru.New(cacheSize)
	s := &State{db: db, cache: cache}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

func (s *State) cacheGetter(key any) (any, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, true, nil
	}

	var (
		val any
		err error
	)
	switch k := key.(type) {
	case balanceKey:
		val, err = s.loadBalance(cfx.Address(k))
	case storageKey:
		val, err = s.loadStorage(k)
	default:
		panic(fmt.Errorf("unexpected key type %T", key))
	}
	if err != nil {
		return nil, false, err
	}
	s.cache.Add(key, val)
	return val, true, nil
}

func (s *State) loadBalance(addr cfx.Address) (*big.Int, error) {
	if s.db == nil {
		return new(big.Int), nil
	}
	data, err := balanceBucket.NewGetter(s.db).Get(addr.Bytes())
	if err != nil {
		if s.db.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	return new(big.Int).SetBytes(data), nil
}

func (s *State) loadStorage(k storageKey) (rlp.RawValue, error) {
	if s.db == nil {
		return nil, nil
	}
	data, err := storageBucket.NewGetter(s.db).Get(append(k.addr.Bytes(), k.key.Bytes()...))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr cfx.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).Set(v.(*big.Int)), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr cfx.Address, balance *big.Int) {
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
}

// AddBalance credits amount to the given address.
func (s *State) AddBalance(addr cfx.Address, amount *big.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	s.SetBalance(addr, bal.Add(bal, amount))
	return nil
}

// SubBalance debits amount from the given address.
func (s *State) SubBalance(addr cfx.Address, amount *big.Int) error {
	bal, err := s.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	s.SetBalance(addr, bal.Sub(bal, amount))
	return nil
}

// Transfer moves amount from one account to another.
func (s *State) Transfer(from, to cfx.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	if err := s.SubBalance(from, amount); err != nil {
		return err
	}
	return s.AddBalance(to, amount)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr cfx.Address, key cfx.Bytes32) (cfx.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return cfx.Bytes32{}, err
	}
	if len(raw) == 0 {
		return cfx.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return cfx.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return cfx.Blake2b(raw), nil
	}
	return cfx.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr cfx.Address, key, value cfx.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr cfx.Address, key cfx.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr cfx.Address, key cfx.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr cfx.Address, key cfx.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr cfx.Address, key cfx.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes all changes into the store and starts a fresh revision stack.
// It returns the count of written keys.
func (s *State) Commit(store kv.Store) (int, error) {
	changes := make(map[any]any)
	s.sm.Journal(func(k, v any) bool {
		changes[k] = v
		return true
	})

	batch := store.NewBatch()
	balances, storages := balanceBucket.NewPutter(batch), storageBucket.NewPutter(batch)
	for k, v := range changes {
		var err error
		switch key := k.(type) {
		case balanceKey:
			bal := v.(*big.Int)
			if bal.Sign() == 0 {
				err = balances.Delete(key[:])
			} else {
				err = balances.Put(key[:], bal.Bytes())
			}
		case storageKey:
			raw := v.(rlp.RawValue)
			sk := append(key.addr.Bytes(), key.key.Bytes()...)
			if len(raw) == 0 {
				err = storages.Delete(sk)
			} else {
				err = storages.Put(sk, raw)
			}
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return 0, &Error{errors.Wrap(err, "write batch")}
	}

	s.db = store
	s.cache.Purge()
	s.sm = stackedmap.New(s.cacheGetter)
	return len(changes), nil
}
