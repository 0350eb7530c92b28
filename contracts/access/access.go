// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access provides the single-owner model and the one-time initializer
// shared by the xCFX contracts.
package access

import (
	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	slotOwner       = solidity.Slot("access.owner")
	slotInitialized = solidity.Slot("access.initialized")

	errDeployed = reverts.New(reverts.AlreadyInitialized, "contract is already deployed")
)

// Ownable keeps the single privileged address of a contract.
type Ownable struct {
	owner *solidity.Address
}

func NewOwnable(sctx *solidity.Context) *Ownable {
	return &Ownable{owner: solidity.NewAddress(sctx, slotOwner)}
}

// Construct records the deployer as owner. It can run only once per contract.
func (o *Ownable) Construct(env *xenv.Environment) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return errDeployed
	}
	o.owner.Set(env.Caller())
	env.Log("OwnershipTransferred", "previousOwner", cfx.Address{}, "newOwner", env.Caller())
	return nil
}

func (o *Ownable) Owner() (cfx.Address, error) {
	return o.owner.Get()
}

// OnlyOwner fails unless the caller is the owner.
func (o *Ownable) OnlyOwner(env *xenv.Environment) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if owner != env.Caller() {
		return reverts.ErrNotOwner
	}
	return nil
}

func (o *Ownable) TransferOwnership(env *xenv.Environment, newOwner cfx.Address) error {
	if err := o.OnlyOwner(env); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrZeroAddress
	}
	o.owner.Set(newOwner)
	env.Log("OwnershipTransferred", "previousOwner", env.Caller(), "newOwner", newOwner)
	return nil
}

// Initializable guards a one-time initializer.
type Initializable struct {
	initialized *solidity.Value[bool]
}

func NewInitializable(sctx *solidity.Context) *Initializable {
	return &Initializable{initialized: solidity.NewValue[bool](sctx, slotInitialized)}
}

func (i *Initializable) Initialized() (bool, error) {
	return i.initialized.Get()
}

// Initialize marks the contract initialized, failing on the second call.
func (i *Initializable) Initialize() error {
	done, err := i.initialized.Get()
	if err != nil {
		return err
	}
	if done {
		return reverts.ErrAlreadyInitialized
	}
	return i.initialized.Set(true)
}

// Require fails unless the contract has been initialized.
func (i *Initializable) Require() error {
	done, err := i.initialized.Get()
	if err != nil {
		return err
	}
	if !done {
		return reverts.ErrNotInitialized
	}
	return nil
}
