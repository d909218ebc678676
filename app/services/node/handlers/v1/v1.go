// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *zap.SugaredLogger
	State         *state.State
	Evts          *events.Events
	MiningTimeout time.Duration
	MaxDifficulty uint
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:           cfg.Log,
		State:         cfg.State,
		Evts:          cfg.Evts,
		MiningTimeout: cfg.MiningTimeout,
		MaxDifficulty: cfg.MaxDifficulty,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/list/:number", pbl.BlockByNumber)
	app.Handle(http.MethodPost, version, "/blocks/mine", pbl.MineBlock)
	app.Handle(http.MethodPost, version, "/blocks/mine/async", pbl.MineBlockAsync)
	app.Handle(http.MethodPost, version, "/blocks/verify", pbl.VerifyBlock)
	app.Handle(http.MethodPost, version, "/mining/cancel", pbl.CancelMining)
	app.Handle(http.MethodGet, version, "/chain/validate", pbl.ValidateChain)
	app.Handle(http.MethodPost, version, "/hash", pbl.Hash)
	app.Handle(http.MethodPost, version, "/mine/simulate", pbl.SimulateMine)
}
