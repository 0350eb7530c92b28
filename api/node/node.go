// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
)

// Chain is the part of the runtime the node api reads.
type Chain interface {
	BlockNumber() uint64
}

// Info describes the node and the contracts it runs.
type Info struct {
	Version string        `json:"version"`
	Owner   cfx.Address   `json:"owner"`
	Token   cfx.Address   `json:"xcfx"`
	Exroom  cfx.Address   `json:"exroom"`
	Bridge  cfx.Address   `json:"bridge"`
	Pools   []cfx.Address `json:"pools"`
}

// NewInfo describes the deployment d.
func NewInfo(version string, d *contracts.Deployment) Info {
	pools := append([]cfx.Address{}, d.Pools...)
	return Info{
		Version: version,
		Owner:   d.Owner,
		Token:   d.Token,
		Exroom:  d.Exroom,
		Bridge:  d.Bridge,
		Pools:   pools,
	}
}

type Status struct {
	BestBlock uint64 `json:"bestBlock"`
}

type Node struct {
	chain Chain
	info  Info
}

func New(chain Chain, info Info) *Node {
	return &Node{
		chain,
		info,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, n.info)
}

func (n *Node) handleStatus(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Status{BestBlock: n.chain.BlockNumber()})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
	sub.Path("/status").
		Methods(http.MethodGet).
		Name("node_get_status").
		HandlerFunc(utils.WrapHandlerFunc(n.handleStatus))
}
