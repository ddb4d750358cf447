// Package e2e provides end-to-end tests for the complete client flow
// against an in-process platform.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/artpar/commercekit/app"
	"github.com/artpar/commercekit/bootstrap"
	"github.com/artpar/commercekit/config"
	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/domain/action"
	"github.com/artpar/commercekit/domain/commerce"
	"github.com/artpar/commercekit/domain/request"
	"github.com/artpar/commercekit/pkg/apierror"
	"github.com/artpar/commercekit/pkg/platformtest"
)

func setupTestApp(t *testing.T) (*bootstrap.App, *platformtest.Platform) {
	t.Helper()
	p := platformtest.New(t)

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
api:
  url: %q
  project_key: %q
oauth:
  url: %q
  client_id: %q
  client_secret: %q
context:
  locale: "de-DE"
  languages: ["de", "en"]
metrics:
  enabled: true
logging:
  level: "error"
`, p.URL(), p.ProjectKey, p.TokenURL(), p.ClientID, p.ClientSecret)))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	a, err := bootstrap.New(cfg, bootstrap.WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })
	return a, p
}

// TestE2E_StoreLifecycle creates, reads, updates and deletes a store,
// including a stale-version conflict.
func TestE2E_StoreLifecycle(t *testing.T) {
	a, p := setupTestApp(t)
	c := a.Client
	ctx := context.Background()

	// 1. Create
	draft := commerce.StoreDraftOfKeyAndName("hamburg", model.LocalizedOf("de", "Hamburg"), a.Context)
	obj, err := c.Execute(ctx, request.Create(commerce.Stores, draft))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store := commerce.AsStore(obj)
	if store.Version() != 1 {
		t.Fatalf("version = %d, want 1", store.Version())
	}

	// 2. Fetch by key, localized through the configured context
	obj, err = c.Execute(ctx, request.FetchByKey(commerce.Stores, "hamburg"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got, _ := commerce.AsStore(obj).Name().Localized(obj.Context()); got != "Hamburg" {
		t.Errorf("localized name = %q, want Hamburg", got)
	}

	// 3. Update
	obj, err = c.Execute(ctx, request.UpdateByKey(commerce.Stores, "hamburg", 1).
		AddAction(action.SetName{Name: model.LocalizedOf("de", "Hamburg Altona")}).
		AddAction(action.SetLanguages{Languages: []string{"de"}}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v := commerce.AsStore(obj).Version(); v != 2 {
		t.Errorf("version after update = %d, want 2", v)
	}

	// 4. Stale update
	_, err = c.Execute(ctx, request.UpdateByKey(commerce.Stores, "hamburg", 1).
		AddAction(action.SetName{Name: model.LocalizedOf("de", "Stale")}))
	if !errors.Is(err, apierror.ErrConflict) {
		t.Fatalf("stale update error = %v, want conflict", err)
	}

	// 5. Delete and confirm
	if _, err := c.Execute(ctx, request.DeleteByKey(commerce.Stores, "hamburg", 2)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.Execute(ctx, request.FetchByID(commerce.Stores, store.ID()))
	if !apierror.IsNotFound(err) {
		t.Errorf("fetch after delete error = %v, want not found", err)
	}

	// One token serves the whole flow.
	if p.TokenRequests() != 1 {
		t.Errorf("token requests = %d, want 1", p.TokenRequests())
	}
	if n := testutil.ToFloat64(a.Metrics.RequestsTotal.WithLabelValues(http.MethodPost, "stores", "2xx")); n != 2 {
		t.Errorf("POST stores 2xx = %v, want 2", n)
	}
}

// TestE2E_BatchWithFailingMiddle checks that one failed request leaves the
// others in a batch intact and in order.
func TestE2E_BatchWithFailingMiddle(t *testing.T) {
	a, p := setupTestApp(t)

	var reqs []*request.Request
	for _, key := range []string{"north", "middle", "south"} {
		z := p.Seed("zones", map[string]any{"key": key, "name": key})
		reqs = append(reqs, request.FetchByID(commerce.Zones, z["id"].(string)))
	}
	p.FailNext("/zones/"+reqs[1].ID(), http.StatusServiceUnavailable)

	results := a.Client.ExecuteBatch(context.Background(), reqs)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, want := range []string{"north", "", "south"} {
		r := results[i]
		if want == "" {
			if r.Err == nil {
				t.Errorf("result %d: expected error", i)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
			continue
		}
		if got := commerce.AsZone(r.Object).Name(); got != want {
			t.Errorf("result %d name = %q, want %q", i, got, want)
		}
	}
}

// TestE2E_CategoryAssets adds and edits category assets.
func TestE2E_CategoryAssets(t *testing.T) {
	a, _ := setupTestApp(t)
	c := a.Client
	ctx := context.Background()

	asset := commerce.AssetDraftOfNameAndSources(model.LocalizedOf("en", "Front"), a.Context,
		commerce.AssetSourceOfURI("https://cdn.example.com/front.png", a.Context)).SetKey("front")
	draft := commerce.CategoryDraftOfNameAndSlug(model.LocalizedOf("en", "Shoes"), model.LocalizedOf("en", "shoes"), a.Context).
		SetKey("shoes").
		AddAsset(asset)

	obj, err := c.Execute(ctx, request.Create(commerce.Categories, draft))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	category := commerce.AsCategory(obj)

	back := commerce.AssetDraftOfNameAndSources(model.LocalizedOf("en", "Back"), a.Context,
		commerce.AssetSourceOfURI("https://cdn.example.com/back.png", a.Context)).SetKey("back")
	pos := 0
	obj, err = c.Execute(ctx, request.UpdateByID(commerce.Categories, category.ID(), category.Version()).
		AddAction(action.AddAsset{Asset: back, Position: &pos}).
		AddAction(action.ChangeAssetName{AssetTarget: action.AssetTarget{AssetKey: "front"}, Name: model.LocalizedOf("en", "Front view")}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	assets := commerce.AsCategory(obj).Assets()
	if assets == nil || assets.Len() != 2 {
		t.Fatalf("assets = %v, want 2", assets)
	}
	first, _ := assets.At(0)
	if key, _ := first.GetString("key"); key != "back" {
		t.Errorf("first asset key = %q, want back", key)
	}
	front, ok := assets.ByKey("front")
	if !ok {
		t.Fatal("front asset missing")
	}
	if name, _ := front.GetLocalized("name"); name.Get("en") != "Front view" {
		t.Errorf("front name = %v", name)
	}
}

// TestE2E_OrderEditStagedActions stages order actions on an order edit.
func TestE2E_OrderEditStagedActions(t *testing.T) {
	a, _ := setupTestApp(t)
	c := a.Client
	ctx := context.Background()

	obj, err := c.Execute(ctx, request.Create(commerce.OrderEdits, commerce.OrderEditDraftOf("order-1", a.Context)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	edit := commerce.Resource{Object: obj}

	obj, err = c.Execute(ctx, request.UpdateByID(commerce.OrderEdits, edit.ID(), edit.Version()).
		AddAction(action.AddStagedAction{StagedAction: action.SetCountry{Country: action.Country{Country: "DE"}}}).
		AddAction(action.AddStagedAction{StagedAction: action.SetCustomerEmail{Email: "jo@example.com"}}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	staged, _ := obj.Raw("stagedActions")
	if list, _ := staged.([]any); len(list) != 2 {
		t.Errorf("stagedActions = %v, want 2 entries", staged)
	}

	// Cart-only actions cannot be staged.
	_, err = c.Execute(ctx, request.UpdateByID(commerce.OrderEdits, edit.ID(), 2).
		AddAction(action.AddStagedAction{StagedAction: action.SetLanguages{Languages: []string{"de"}}}))
	if err == nil {
		t.Error("expected invalid staged action to fail")
	}
}

// TestE2E_CartMoney reads decorated money values from a cart.
func TestE2E_CartMoney(t *testing.T) {
	a, p := setupTestApp(t)

	cart := p.Seed("carts", map[string]any{
		"country": "DE",
		"totalPrice": map[string]any{
			"type":           "centPrecision",
			"currencyCode":   "EUR",
			"centAmount":     1250,
			"fractionDigits": 2,
		},
	})

	obj, err := a.Client.Execute(context.Background(), request.FetchByID(commerce.Carts, cart["id"].(string)))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	total := commerce.AsCart(obj).TotalPrice()
	if total == nil {
		t.Fatal("totalPrice missing")
	}
	if total.CurrencyCode() != "EUR" || total.CentAmount() != 1250 || total.Amount() != 12.5 {
		t.Errorf("total = %s %d (%v)", total.CurrencyCode(), total.CentAmount(), total.Amount())
	}
}

// TestE2E_CustomObjects stores, lists and deletes custom objects.
func TestE2E_CustomObjects(t *testing.T) {
	a, _ := setupTestApp(t)
	c := a.Client
	ctx := context.Background()

	for _, key := range []string{"checkout", "shipping"} {
		draft := commerce.CustomObjectDraftOf("settings", key, map[string]any{"enabled": true}, a.Context)
		if _, err := c.Execute(ctx, request.Create(commerce.CustomObjects, draft)); err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
	}

	obj, err := c.Execute(ctx, commerce.CustomObjectFetchByContainerAndKey("settings", "checkout"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	co := commerce.AsCustomObject(obj)
	if co.Container() != "settings" {
		t.Errorf("container = %q", co.Container())
	}
	if v, _ := co.Value().(map[string]any); v["enabled"] != true {
		t.Errorf("value = %v", co.Value())
	}

	page, err := c.Execute(ctx, commerce.CustomObjectsInContainer("settings"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	objs, err := commerce.ResultsOf(page, commerce.AsCustomObject)
	if err != nil || len(objs) != 2 {
		t.Fatalf("results = %d, %v; want 2", len(objs), err)
	}

	if _, err := c.Execute(ctx, commerce.CustomObjectDeleteByContainerAndKey("settings", "checkout", co.Version())); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.Execute(ctx, commerce.CustomObjectFetchByContainerAndKey("settings", "checkout"))
	if !apierror.IsNotFound(err) {
		t.Errorf("fetch after delete error = %v, want not found", err)
	}
}

// TestE2E_AsyncAndTokenRenewal runs async requests across a token
// revocation.
func TestE2E_AsyncAndTokenRenewal(t *testing.T) {
	a, p := setupTestApp(t)
	ctx := context.Background()
	z := p.Seed("zones", map[string]any{"key": "z", "name": "Zone"})
	id := z["id"].(string)

	if _, err := a.Client.ExecuteAsync(ctx, request.FetchByID(commerce.Zones, id)).Wait(ctx); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	p.RevokeTokens()
	_, err := a.Client.ExecuteAsync(ctx, request.FetchByID(commerce.Zones, id)).Wait(ctx)
	if !errors.Is(err, apierror.ErrUnauthorized) {
		t.Fatalf("fetch with revoked token error = %v, want unauthorized", err)
	}

	results := a.Client.ExecuteBatch(ctx, []*request.Request{request.FetchByID(commerce.Zones, id)})
	if err := firstErr(results); err != nil {
		t.Fatalf("fetch after renewal: %v", err)
	}
	if p.TokenRequests() != 2 {
		t.Errorf("token requests = %d, want 2", p.TokenRequests())
	}
}

func firstErr(results []app.Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
