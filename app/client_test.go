package app_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/commercekit/adapters/httpclient"
	"github.com/artpar/commercekit/adapters/oauth"
	"github.com/artpar/commercekit/app"
	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/domain/action"
	"github.com/artpar/commercekit/domain/commerce"
	domainoauth "github.com/artpar/commercekit/domain/oauth"
	"github.com/artpar/commercekit/domain/request"
	"github.com/artpar/commercekit/pkg/apierror"
	"github.com/artpar/commercekit/pkg/platformtest"
)

func newClient(t *testing.T, p *platformtest.Platform) *app.Client {
	t.Helper()
	adapter := httpclient.New(httpclient.Config{BaseURL: p.URL()})
	tokens, err := oauth.NewProvider(oauth.Config{
		TokenURL: p.TokenURL(),
		Credentials: domainoauth.Credentials{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			Scopes:       []string{"manage_project:" + p.ProjectKey},
		},
	}, adapter)
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	return app.NewClient(app.ClientDeps{
		Adapter: adapter,
		Tokens:  tokens,
		Logger:  zerolog.Nop(),
	}, app.ClientConfig{ProjectKey: p.ProjectKey})
}

func TestExecute_CreateAndFetch(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)
	ctx := context.Background()

	draft := commerce.StoreDraftOfKeyAndName("berlin", model.LocalizedOf("en", "Berlin"), nil).SetLanguages("en", "de")
	obj, err := c.Execute(ctx, request.Create(commerce.Stores, draft))
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	created := commerce.AsStore(obj)
	if created.ID() == "" || created.Version() != 1 {
		t.Errorf("created id=%q version=%d", created.ID(), created.Version())
	}

	obj, err = c.Execute(ctx, request.FetchByKey(commerce.Stores, "berlin"))
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	store := commerce.AsStore(obj)
	if store.Name().Get("en") != "Berlin" {
		t.Errorf("name.en = %q", store.Name().Get("en"))
	}
	if got := store.Languages(); len(got) != 2 {
		t.Errorf("Languages = %v", got)
	}

	reqs := p.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/"+p.ProjectKey+"/stores/key=berlin" {
		t.Errorf("path = %q", last.Path)
	}
	if !strings.HasPrefix(last.Authorization, "Bearer ") {
		t.Errorf("Authorization = %q", last.Authorization)
	}
	if last.CorrelationID == "" {
		t.Error("missing correlation id")
	}
	if p.TokenRequests() != 1 {
		t.Errorf("TokenRequests = %d, want 1", p.TokenRequests())
	}
}

func TestExecute_UpdateAndConflict(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)
	ctx := context.Background()

	seeded := p.Seed("stores", map[string]any{"key": "s", "version": 3})
	id := seeded["id"].(string)

	obj, err := c.Execute(ctx, request.UpdateByID(commerce.Stores, id, 3).
		AddAction(action.SetName{Name: model.LocalizedOf("en", "X")}))
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	store := commerce.AsStore(obj)
	if store.Version() != 4 || store.Name().Get("en") != "X" {
		t.Errorf("version=%d name=%v", store.Version(), store.Name())
	}

	_, err = c.Execute(ctx, request.UpdateByID(commerce.Stores, id, 3).
		AddAction(action.SetName{Name: model.LocalizedOf("en", "Y")}))
	if !errors.Is(err, apierror.ErrConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
	apiErr, _ := apierror.AsError(err)
	if v, ok := apiErr.CurrentVersion(); !ok || v != 4 {
		t.Errorf("CurrentVersion = %d, %v", v, ok)
	}
	if apiErr.CorrelationID == "" {
		t.Error("conflict error has no correlation id")
	}
}

func TestExecute_NotFound(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)

	_, err := c.Execute(context.Background(), request.FetchByID(commerce.Zones, "missing"))
	if !apierror.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestExecute_BuildErrorSkipsTransport(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)

	// Zones do not accept setLanguages.
	r := request.UpdateByID(commerce.Zones, "z", 1).AddAction(action.SetLanguages{Languages: []string{"en"}})
	_, err := c.Execute(context.Background(), r)
	if !errors.Is(err, request.ErrActionNotSupported) {
		t.Fatalf("error = %v, want ErrActionNotSupported", err)
	}
	if n := len(p.Requests()); n != 0 {
		t.Errorf("platform received %d requests", n)
	}
}

func TestExecute_RequestConsumed(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)

	r := request.Query(commerce.Stores)
	if _, err := c.Execute(context.Background(), r); err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if _, err := c.Execute(context.Background(), r); !errors.Is(err, request.ErrRequestConsumed) {
		t.Errorf("second Execute error = %v, want ErrRequestConsumed", err)
	}
}

func TestExecute_RejectedTokenIsRenewedOnNextCall(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)
	ctx := context.Background()

	if _, err := c.Execute(ctx, request.Query(commerce.Stores)); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	p.RevokeTokens()

	_, err := c.Execute(ctx, request.Query(commerce.Stores))
	if !errors.Is(err, apierror.ErrUnauthorized) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
	if _, err := c.Execute(ctx, request.Query(commerce.Stores)); err != nil {
		t.Fatalf("Execute after revoke error: %v", err)
	}
	if p.TokenRequests() != 2 {
		t.Errorf("TokenRequests = %d, want 2", p.TokenRequests())
	}
}

func TestExecuteBatch_FailingMiddle(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)

	a := p.Seed("zones", map[string]any{"name": "A"})
	b := p.Seed("zones", map[string]any{"name": "B"})
	p.FailNext("/zones/missing", http.StatusInternalServerError)

	results := c.ExecuteBatch(context.Background(), []*request.Request{
		request.FetchByID(commerce.Zones, a["id"].(string)),
		request.FetchByID(commerce.Zones, "missing"),
		request.FetchByID(commerce.Zones, b["id"].(string)),
	})

	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].Err != nil || commerce.AsZone(results[0].Object).Name() != "A" {
		t.Errorf("slot 0 = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("slot 1: expected error")
	}
	if apiErr, ok := apierror.AsError(results[1].Err); !ok || apiErr.StatusCode != 500 {
		t.Errorf("slot 1 error = %v", results[1].Err)
	}
	if results[2].Err != nil || commerce.AsZone(results[2].Object).Name() != "B" {
		t.Errorf("slot 2 = %+v", results[2])
	}
}

func TestExecuteBatch_BuildErrorInSlot(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)

	bad := request.UpdateByID(commerce.Carts, "c", 1).AddAction(action.ChangeSlug{})
	results := c.ExecuteBatch(context.Background(), []*request.Request{
		request.Query(commerce.Carts),
		bad,
	})
	if results[0].Err != nil {
		t.Errorf("slot 0 error: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("slot 1: expected build error")
	}
}

func TestExecuteAsync(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)
	p.Seed("carts", map[string]any{"id": "c1", "key": "cart-1"})

	f := c.ExecuteAsync(context.Background(), request.FetchByID(commerce.Carts, "c1"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obj, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if commerce.AsCart(obj).Key() != "cart-1" {
		t.Errorf("Key = %q", commerce.AsCart(obj).Key())
	}
}

func TestExecuteAsync_NetworkError(t *testing.T) {
	p := platformtest.New(t)
	c := newClient(t, p)
	c.Execute(context.Background(), request.Query(commerce.Carts)) // warm the token
	p.Close()

	f := c.ExecuteAsync(context.Background(), request.Query(commerce.Carts))
	_, err := f.Wait(context.Background())
	if !apierror.IsNetwork(err) {
		t.Errorf("error = %v, want NetworkError", err)
	}
}

func TestNoProjectKey(t *testing.T) {
	c := app.NewClient(app.ClientDeps{Adapter: httpclient.New(httpclient.Config{})}, app.ClientConfig{})
	if _, err := c.Execute(context.Background(), request.Query(commerce.Stores)); !errors.Is(err, app.ErrNoProjectKey) {
		t.Errorf("error = %v, want ErrNoProjectKey", err)
	}
}

func TestUpdateConfig(t *testing.T) {
	p := platformtest.New(t, platformtest.WithProjectKey("second"))
	c := newClient(t, p)
	c.UpdateConfig("first", nil)

	_, err := c.Execute(context.Background(), request.Query(commerce.Stores))
	if !apierror.IsNotFound(err) {
		t.Fatalf("error = %v, want project not found", err)
	}

	c.UpdateConfig("second", model.NewContext())
	if c.ProjectKey() != "second" {
		t.Errorf("ProjectKey = %q", c.ProjectKey())
	}
	if _, err := c.Execute(context.Background(), request.Query(commerce.Stores)); err != nil {
		t.Errorf("Execute error: %v", err)
	}
}
