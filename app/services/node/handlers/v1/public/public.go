// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powchain/business/sys/metrics"
	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/phrase"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log           *zap.SugaredLogger
	State         *state.State
	Evts          *events.Events
	WS            websocket.Upgrader
	MiningTimeout time.Duration
	MaxDifficulty uint
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()

	resp := genesisResponse{
		Difficulty: gen.Difficulty,
		Algorithm:  gen.Algorithm,
		Block:      h.State.RetrieveGenesisBlock(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns every block in the chain starting with genesis.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.QueryBlocks()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByNumber returns the block at the specified position in the chain.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.QueryBlockByNumber(number)
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// MineBlock appends a new block to the chain. The request waits for the
// mining to complete or the mining timeout to pass.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req mineRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	difficulty, err := h.difficulty(req.Difficulty)
	if err != nil {
		return err
	}

	payload := req.Payload
	if payload == "" {
		payload = phrase.New(phrase.DefaultWords)
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "difficulty", difficulty, "payload", payload)

	mctx, cancel := h.miningContext(ctx)
	defer cancel()

	result, err := h.State.MineNewBlock(mctx, payload, difficulty)
	if err != nil {
		return miningError(err)
	}

	metrics.AddBlocks(ctx)

	return web.Respond(ctx, w, toMineResponse(result), http.StatusOK)
}

// MineBlockAsync queues a request for the worker to append a new block.
func (h Handlers) MineBlockAsync(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req mineRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	difficulty, err := h.difficulty(req.Difficulty)
	if err != nil {
		return err
	}

	payload := req.Payload
	if payload == "" {
		payload = phrase.New(phrase.DefaultWords)
	}

	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining worker not running"), http.StatusServiceUnavailable)
	}

	mreq := state.MiningRequest{
		Payload:    payload,
		Difficulty: difficulty,
	}

	if err := h.State.Worker.SignalStartMining(mreq); err != nil {
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining queued",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// CancelMining stops the block the worker is currently mining.
func (h Handlers) CancelMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining worker not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalCancelMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining cancel signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// VerifyBlock checks if the candidate nonce produces the candidate hash for
// the stored content of a block.
func (h Handlers) VerifyBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	valid, err := h.State.VerifyBlockHash(*req.Number, req.Hash, *req.Nonce)
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) {
			return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusNotFound)
		}
		return err
	}

	resp := verifyResponse{
		Number: *req.Number,
		Valid:  valid,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ValidateChain recomputes and checks every block in the chain.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validateResponse{
		Valid:  true,
		Blocks: h.State.QueryChainLength(),
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Hash calculates the digest for the specified block fields.
func (h Handlers) Hash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req hashRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	resp := hashResponse{
		Hash: h.State.ComputeHash(req.Payload, req.PrevBlockHash, req.TimeStamp, req.Nonce),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SimulateMine mines a block from the specified fields without adding it
// to the chain.
func (h Handlers) SimulateMine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req simulateRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	difficulty, err := h.difficulty(req.Difficulty)
	if err != nil {
		return err
	}

	mctx, cancel := h.miningContext(ctx)
	defer cancel()

	result, err := h.State.SimulateMine(mctx, req.Payload, req.PrevBlockHash, req.TimeStamp, difficulty)
	if err != nil {
		return miningError(err)
	}

	return web.Respond(ctx, w, toMineResponse(result), http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

// difficulty applies the default difficulty and the service limit.
func (h Handlers) difficulty(requested *uint) (uint, error) {
	if requested == nil {
		return h.State.RetrieveDifficulty(), nil
	}

	if h.MaxDifficulty > 0 && *requested > h.MaxDifficulty {
		err := fmt.Errorf("%w: %d is greater than the service limit of %d", database.ErrInvalidDifficulty, *requested, h.MaxDifficulty)
		return 0, errs.NewTrusted(err, http.StatusBadRequest)
	}

	return *requested, nil
}

// miningContext applies the mining timeout to the request context.
func (h Handlers) miningContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.MiningTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.MiningTimeout)
}

// decode reads the request document and marks any decoding problem as a
// bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	return nil
}

// miningError converts the errors mining can produce into web errors.
func miningError(err error) error {
	switch {
	case errors.Is(err, database.ErrInvalidDifficulty):
		return errs.NewTrusted(err, http.StatusBadRequest)

	case errors.Is(err, database.ErrMiningExhausted):
		return errs.NewTrusted(err, http.StatusUnprocessableEntity)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errs.NewTrusted(fmt.Errorf("mining did not complete: %w", err), http.StatusRequestTimeout)
	}

	return err
}
