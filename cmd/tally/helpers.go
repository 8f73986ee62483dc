package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/tallyledger/tally/internal/budget"
	"github.com/tallyledger/tally/internal/config"
	"github.com/tallyledger/tally/internal/ledger"
	"github.com/tallyledger/tally/internal/model"
	"github.com/tallyledger/tally/internal/remote"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/source"
	"github.com/tallyledger/tally/internal/storage"
)

// app bundles the handles every command works against; no global mutable
// state beyond the cobra/viper plumbing.
type app struct {
	kv      service.KVStore
	store   *ledger.Store
	remote  *remote.Client // nil when the remote store is not configured
	tracker *budget.Tracker
}

// initApp opens local storage, hydrates the ledger from the offline snapshot,
// and connects the remote client when configured. The returned cleanup closes
// storage.
func initApp(ctx context.Context) (*app, func(), error) {
	kv, err := initKV()
	if err != nil {
		return nil, nil, err
	}

	store := ledger.NewStore(ledger.NewSnapshotCache(kv))
	restored := store.Hydrate(ctx)
	slog.Debug("Hydrated ledger from offline snapshot", "transactions", restored)

	tracker := budget.NewTracker(kv)
	tracker.Load(ctx)

	client, err := initRemote()
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	if client == nil {
		slog.Debug("Remote store not configured, operating on local data only")
	}

	a := &app{
		kv:      kv,
		store:   store,
		remote:  client,
		tracker: tracker,
	}
	cleanup := func() {
		if err := kv.Close(); err != nil {
			slog.Warn("Failed to close local storage", "error", err)
		}
	}
	return a, cleanup, nil
}

// initKV initializes local storage with proper path expansion.
func initKV() (service.KVStore, error) {
	dbPath := viper.GetString("storage.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tally/tally.db"
	}
	dbPath = config.ExpandPath(dbPath)

	return storage.NewSQLiteKV(dbPath)
}

// initRemote returns nil without error when no remote store is configured;
// commands degrade to local-only operation.
func initRemote() (*remote.Client, error) {
	baseURL := viper.GetString("remote.base_url")
	if baseURL == "" {
		return nil, nil
	}

	return remote.NewClient(remote.Config{
		BaseURL: baseURL,
		Owner:   viper.GetString("remote.owner"),
	})
}

// insertManual persists a manual expense remote-first. On remote failure the
// record is kept locally with an unconfirmed id so input is never lost.
func insertManual(ctx context.Context, a *app, rec source.ManualRecord) (model.Transaction, bool, error) {
	if a.remote != nil {
		stored, err := a.remote.InsertExpense(ctx, rec)
		if err == nil {
			txn := source.MapManual(stored)
			return txn, false, a.store.Insert(txn)
		}
		slog.Warn("Remote insert failed, keeping expense locally", "error", err)
	}

	txn := source.MapManual(rec)
	txn.ID = "local_" + uuid.NewString()
	txn.Confirmed = false
	return txn, true, a.store.Insert(txn)
}

// deleteTransaction removes a transaction local-first; the remote delete is
// best-effort and never rolled back.
func deleteTransaction(ctx context.Context, a *app, id string) error {
	txn, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("no transaction with id %s", id)
	}

	a.store.Remove(id)

	if a.remote == nil || !txn.Confirmed {
		return nil
	}

	var err error
	if txn.Source == model.SourceMessage {
		err = a.remote.DeleteMessage(ctx, strings.TrimPrefix(id, model.MessageIDPrefix))
	} else {
		err = a.remote.DeleteExpense(ctx, id)
	}
	if err != nil {
		slog.Warn("Remote delete failed, local delete kept", "id", id, "error", err)
	}
	return nil
}

// resolveCredential reads the OCR credential from the local cache first, then
// the remote settings store, mirroring a remote hit back into the cache.
func resolveCredential(ctx context.Context, a *app) string {
	if raw, err := a.kv.Get(ctx, storage.KeyOCRCredential); err == nil && len(raw) > 0 {
		return string(raw)
	}

	if a.remote == nil {
		return ""
	}
	credential, err := a.remote.GetCredential(ctx)
	if err != nil {
		slog.Warn("Failed to fetch OCR credential", "error", err)
		return ""
	}
	if credential != "" {
		if err := a.kv.Set(ctx, storage.KeyOCRCredential, []byte(credential)); err != nil {
			slog.Warn("Failed to cache OCR credential", "error", err)
		}
	}
	return credential
}
