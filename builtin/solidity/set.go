// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/nucleonfinance/xcfx/cfx"
)

// AddressSet is an enumerable set of addresses.
// Members are kept in insertion order, removal moves the last member into the freed position.
type AddressSet struct {
	length  *Value[uint64]
	members *Mapping[cfx.Bytes32, cfx.Address]
	indexes *Mapping[cfx.Address, uint64] // 1-based, 0 means absent
}

func NewAddressSet(context *Context, pos cfx.Bytes32) *AddressSet {
	return &AddressSet{
		length:  NewValue[uint64](context, pos),
		members: NewMapping[cfx.Bytes32, cfx.Address](context, cfx.Blake2b(pos.Bytes(), []byte("members"))),
		indexes: NewMapping[cfx.Address, uint64](context, cfx.Blake2b(pos.Bytes(), []byte("indexes"))),
	}
}

func (s *AddressSet) Len() (uint64, error) {
	return s.length.Get()
}

func (s *AddressSet) Contains(addr cfx.Address) (bool, error) {
	idx, err := s.indexes.Get(addr)
	return idx != 0, err
}

// Add inserts addr and reports whether it was absent.
func (s *AddressSet) Add(addr cfx.Address) (bool, error) {
	if ok, err := s.Contains(addr); err != nil || ok {
		return false, err
	}
	n, err := s.length.Get()
	if err != nil {
		return false, err
	}
	if err := s.members.Set(cfx.Uint64ToBytes32(n), addr); err != nil {
		return false, err
	}
	if err := s.indexes.Set(addr, n+1); err != nil {
		return false, err
	}
	return true, s.length.Set(n + 1)
}

// Remove deletes addr and reports whether it was present.
func (s *AddressSet) Remove(addr cfx.Address) (bool, error) {
	idx, err := s.indexes.Get(addr)
	if err != nil || idx == 0 {
		return false, err
	}
	n, err := s.length.Get()
	if err != nil {
		return false, err
	}
	last := cfx.Uint64ToBytes32(n - 1)
	if idx != n {
		moved, err := s.members.Get(last)
		if err != nil {
			return false, err
		}
		if err := s.members.Set(cfx.Uint64ToBytes32(idx-1), moved); err != nil {
			return false, err
		}
		if err := s.indexes.Set(moved, idx); err != nil {
			return false, err
		}
	}
	s.members.Delete(last)
	s.indexes.Delete(addr)
	return true, s.length.Set(n - 1)
}

// Replace puts newAddr at the position of old, keeping the order.
func (s *AddressSet) Replace(old, newAddr cfx.Address) (bool, error) {
	idx, err := s.indexes.Get(old)
	if err != nil || idx == 0 {
		return false, err
	}
	if ok, err := s.Contains(newAddr); err != nil || ok {
		return false, err
	}
	if err := s.members.Set(cfx.Uint64ToBytes32(idx-1), newAddr); err != nil {
		return false, err
	}
	s.indexes.Delete(old)
	return true, s.indexes.Set(newAddr, idx)
}

// Members returns all members in order.
func (s *AddressSet) Members() ([]cfx.Address, error) {
	n, err := s.length.Get()
	if err != nil {
		return nil, err
	}
	members := make([]cfx.Address, 0, n)
	for i := range n {
		m, err := s.members.Get(cfx.Uint64ToBytes32(i))
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
