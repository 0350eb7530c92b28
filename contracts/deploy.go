// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package contracts deploys the xCFX contracts onto a runtime and wires them together.
package contracts

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/exroom"
	"github.com/nucleonfinance/xcfx/contracts/pospool"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "contracts")

// LockPeriods are lock in and lock out periods in blocks.
type LockPeriods struct {
	In  uint64
	Out uint64
}

// PoolParams describe one staking pool to deploy and register.
type PoolParams struct {
	Name  string
	Votes uint64
	Lock  *LockPeriods
}

// Params describe a deployment. Zero values keep the contract defaults.
type Params struct {
	Owner             cfx.Address
	Triggers          []cfx.Address
	Treasury          cfx.Address
	CfxCountOfOneVote uint64
	ShareRatio        uint64
	ExroomSeed        *big.Int
	ExroomLock        *LockPeriods
	MinExchange       *big.Int
	Pools             []PoolParams
}

// Deployment is the addresses of a deployed system.
type Deployment struct {
	Owner  cfx.Address
	Token  cfx.Address
	Exroom cfx.Address
	Bridge cfx.Address
	Pools  []cfx.Address
}

// AddressOf returns the address a deployer gets for the named contract.
func AddressOf(deployer cfx.Address, name string) cfx.Address {
	h := cfx.Blake2b(deployer.Bytes(), []byte(name))
	return cfx.BytesToAddress(h[12:])
}

// NewDeployment computes the addresses of the contracts described by params.
func NewDeployment(params *Params) *Deployment {
	d := &Deployment{
		Owner:  params.Owner,
		Token:  AddressOf(params.Owner, "xcfx"),
		Exroom: AddressOf(params.Owner, "exroom"),
		Bridge: AddressOf(params.Owner, "bridge"),
	}
	for i := range params.Pools {
		d.Pools = append(d.Pools, AddressOf(params.Owner, fmt.Sprintf("pool-%d", i)))
	}
	return d
}

// Bind installs the receive handlers of the deployed contracts.
func (d *Deployment) Bind(rt *runtime.Runtime) {
	for _, addr := range d.Pools {
		rt.Bind(addr, func(env *xenv.Environment) error {
			return pospool.New(env.To(), env.State()).Receive(env)
		})
	}
	rt.Bind(d.Exroom, func(env *xenv.Environment) error {
		return exroom.New(env.To(), env.State()).Receive(env)
	})
	rt.Bind(d.Bridge, func(env *xenv.Environment) error {
		return Bridge(env.To(), env.State()).Receive(env)
	})
}

// Deploy deploys and configures all contracts described by params. The owner pays
// the exchange room seed and the registration of every pool.
func Deploy(rt *runtime.Runtime, params *Params) (*Deployment, error) {
	d := NewDeployment(params)
	d.Bind(rt)

	owner := params.Owner
	exec := func(to cfx.Address, value *big.Int, method string, fn func(env *xenv.Environment) error) error {
		if _, err := rt.Exec(runtime.Clause{Caller: owner, To: to, Value: value, Method: method}, fn); err != nil {
			return errors.Wrapf(err, "deploy: %s", method)
		}
		return nil
	}

	if err := exec(d.Token, nil, "xcfx.construct", func(env *xenv.Environment) error {
		tk := xcfx.New(env.To(), env.State())
		if err := tk.Construct(env); err != nil {
			return err
		}
		return tk.AddMinter(env, d.Exroom)
	}); err != nil {
		return nil, err
	}

	seed := params.ExroomSeed
	if seed == nil {
		seed = cfx.CFX(1)
	}
	if err := exec(d.Exroom, seed, "exroom.initialize", func(env *xenv.Environment) error {
		r := exroom.New(env.To(), env.State())
		if err := r.Construct(env); err != nil {
			return err
		}
		if err := r.SetBridge(env, d.Bridge); err != nil {
			return err
		}
		if err := r.Initialize(env, d.Token, env.Value()); err != nil {
			return err
		}
		if l := params.ExroomLock; l != nil {
			if err := r.SetLockPeriod(env, l.In, l.Out); err != nil {
				return err
			}
		}
		if params.MinExchange != nil {
			return r.SetMinExchangeLimits(env, params.MinExchange)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := exec(d.Bridge, nil, "bridge.initialize", func(env *xenv.Environment) error {
		b := Bridge(env.To(), env.State())
		if err := b.Construct(env); err != nil {
			return err
		}
		if err := b.Initialize(env); err != nil {
			return err
		}
		if err := b.SetExroomAddress(env, d.Exroom); err != nil {
			return err
		}
		if err := b.SetXCFXAddress(env, d.Token); err != nil {
			return err
		}
		if params.CfxCountOfOneVote != 0 {
			if err := b.SetCfxCountOfOneVote(env, params.CfxCountOfOneVote); err != nil {
				return err
			}
		}
		if params.ShareRatio != 0 {
			if err := b.SetPoolUserShareRatio(env, params.ShareRatio); err != nil {
				return err
			}
		}
		if !params.Treasury.IsZero() {
			if err := b.SetServiceTreasuryAddress(env, params.Treasury); err != nil {
				return err
			}
		}
		for _, trigger := range params.Triggers {
			if err := b.SetTrustedTriggers(env, trigger, true); err != nil {
				return err
			}
		}
		for _, pool := range d.Pools {
			if err := b.AddPoolAddress(env, pool); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for i, pp := range params.Pools {
		if err := deployPool(rt, owner, d.Pools[i], d.Bridge, pp); err != nil {
			return nil, err
		}
	}
	logger.Info("contracts deployed", "token", d.Token, "exroom", d.Exroom, "bridge", d.Bridge, "pools", len(d.Pools))
	return d, nil
}

func deployPool(rt *runtime.Runtime, owner, addr, bridge cfx.Address, pp PoolParams) error {
	clause := runtime.Clause{Caller: owner, To: addr, Method: "pospool.construct"}
	if _, err := rt.Exec(clause, func(env *xenv.Environment) error {
		p := pospool.New(env.To(), env.State())
		if err := p.Construct(env); err != nil {
			return err
		}
		if err := p.Initialize(env); err != nil {
			return err
		}
		if _, err := p.SetBridge(env, bridge); err != nil {
			return err
		}
		if pp.Name != "" {
			if err := p.SetPoolName(env, pp.Name); err != nil {
				return err
			}
		}
		if l := pp.Lock; l != nil {
			return p.SetLockPeriod(env, l.In, l.Out)
		}
		return nil
	}); err != nil {
		return errors.Wrapf(err, "deploy: pool %v", addr)
	}
	if pp.Votes == 0 {
		return nil
	}

	identifier := cfx.Blake2b(addr.Bytes(), []byte("identifier"))
	keys := cfx.Blake2b(addr.Bytes(), []byte("keys"))
	clause = runtime.Clause{
		Caller: owner,
		To:     addr,
		Value:  cfx.VoteValue(pp.Votes, cfx.OneVoteCFXCount),
		Method: "pospool.register",
	}
	if _, err := rt.Exec(clause, func(env *xenv.Environment) error {
		return pospool.New(env.To(), env.State()).Register(env, identifier, pp.Votes, keys.Bytes(), keys.Bytes(), identifier.Bytes())
	}); err != nil {
		return errors.Wrapf(err, "deploy: register pool %v", addr)
	}
	return nil
}
