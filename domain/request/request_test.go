package request

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/core/schema"
	"github.com/artpar/commercekit/domain/action"
	"github.com/artpar/commercekit/domain/transport"
)

func testEndpoint(t *testing.T) Endpoint {
	t.Helper()
	reg := schema.NewRegistry()
	err := reg.Add(schema.NewEntity("Widget",
		schema.Prop("id", schema.FieldTypeString),
		schema.Prop("version", schema.FieldTypeInt),
		schema.Prop("key", schema.FieldTypeString).Opt(),
	))
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Resolve(); err != nil {
		t.Fatal(err)
	}
	return Endpoint{Path: "widgets", Entity: reg.MustEntity("Widget"), Resource: action.Store}
}

func TestBuilders(t *testing.T) {
	ep := testEndpoint(t)

	tests := []struct {
		name       string
		req        *Request
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{"fetch by id", FetchByID(ep, "w1"), http.MethodGet, "/widgets/w1", ""},
		{"fetch by key", FetchByKey(ep, "blue"), http.MethodGet, "/widgets/key=blue", ""},
		{"fetch escapes", FetchByID(ep, "a/b"), http.MethodGet, "/widgets/a%2Fb", ""},
		{"expand", FetchByID(ep, "w1").Expand("parent"), http.MethodGet, "/widgets/w1", "expand=parent"},
		{"delete by id", DeleteByID(ep, "w1", 3), http.MethodDelete, "/widgets/w1", "version=3"},
		{"delete by key", DeleteByKey(ep, "blue", 4), http.MethodDelete, "/widgets/key=blue", "version=4"},
		{"update by id", UpdateByID(ep, "w1", 1), http.MethodPost, "/widgets/w1", ""},
		{
			"query",
			Query(ep).Where(`key="a"`).Where(`version > 1`).Sort("id asc").Limit(10).Offset(20).WithTotal(false),
			http.MethodGet,
			"/widgets",
			"limit=10&offset=20&sort=id+asc&where=key%3D%22a%22&where=version+%3E+1&withTotal=false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := tt.req.HTTPRequest()
			if err != nil {
				t.Fatal(err)
			}
			if tr.Method != tt.wantMethod {
				t.Errorf("Method = %s, want %s", tr.Method, tt.wantMethod)
			}
			if tr.Path != tt.wantPath {
				t.Errorf("Path = %s, want %s", tr.Path, tt.wantPath)
			}
			if got := tr.Query.Encode(); got != tt.wantQuery {
				t.Errorf("Query = %s, want %s", got, tt.wantQuery)
			}
			if tt.req.State() != Sent {
				t.Errorf("State = %s, want sent", tt.req.State())
			}
		})
	}
}

func TestUpdateBody(t *testing.T) {
	ep := testEndpoint(t)
	req := UpdateByID(ep, "w1", 3).AddAction(action.SetKey{Key: "red"}).Timeout(2 * time.Second)

	tr, err := req.HTTPRequest()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"version":3,"actions":[{"action":"setKey","key":"red"}]}`
	if string(tr.Body) != want {
		t.Errorf("Body = %s, want %s", tr.Body, want)
	}
	if tr.Header("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", tr.Header("Content-Type"))
	}
	if tr.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v", tr.Timeout)
	}

	empty, _ := UpdateByKey(ep, "k", 1).HTTPRequest()
	if string(empty.Body) != `{"version":1,"actions":[]}` {
		t.Errorf("empty update body = %s", empty.Body)
	}
}

func TestAddActionNotSupported(t *testing.T) {
	ep := testEndpoint(t)

	req := UpdateByID(ep, "w1", 1).AddAction(action.ChangeOrderHint{OrderHint: "0.5"})
	if !errors.Is(req.Err(), ErrActionNotSupported) {
		t.Fatalf("Err = %v, want ErrActionNotSupported", req.Err())
	}
	if _, err := req.HTTPRequest(); !errors.Is(err, ErrActionNotSupported) {
		t.Errorf("HTTPRequest error = %v", err)
	}
	if req.State() != Failed {
		t.Errorf("State = %s, want failed", req.State())
	}

	noActions := Endpoint{Path: "things", Entity: ep.Entity}
	req = UpdateByID(noActions, "t", 1).AddAction(action.SetKey{Key: "x"})
	if !errors.Is(req.Err(), ErrActionNotSupported) {
		t.Errorf("endpoint without resource: Err = %v", req.Err())
	}

	req = UpdateByID(ep, "w1", 1).AddAction(action.SetCustomField{})
	if !errors.Is(req.Err(), action.ErrInvalid) {
		t.Errorf("invalid action: Err = %v, want ErrInvalid", req.Err())
	}
}

func TestRequestConsumedOnce(t *testing.T) {
	ep := testEndpoint(t)
	req := FetchByID(ep, "w1")

	if _, err := req.HTTPRequest(); err != nil {
		t.Fatal(err)
	}
	if _, err := req.HTTPRequest(); !errors.Is(err, ErrRequestConsumed) {
		t.Errorf("second HTTPRequest error = %v, want ErrRequestConsumed", err)
	}

	resp := &transport.Response{Status: 200, Body: []byte(`{"id":"w1","version":1}`)}
	if _, err := req.MapResponse(resp); err != nil {
		t.Fatal(err)
	}
	if req.State() != Mapped {
		t.Errorf("State = %s, want mapped", req.State())
	}
	if _, err := req.MapResponse(resp); !errors.Is(err, ErrRequestConsumed) {
		t.Errorf("second MapResponse error = %v, want ErrRequestConsumed", err)
	}
}

func TestCreateRequiresDraft(t *testing.T) {
	ep := testEndpoint(t)
	req := Create(ep, nil)
	if !errors.Is(req.Err(), model.ErrExpectsParameter) {
		t.Errorf("Err = %v, want ErrExpectsParameter", req.Err())
	}

	if err := New(http.MethodGet, Endpoint{Path: "x"}).Err(); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("endpoint without entity: Err = %v", err)
	}
}

func TestMapPaged(t *testing.T) {
	ep := testEndpoint(t)
	req := Query(ep)
	body := `{"limit":20,"offset":0,"count":2,"total":2,"results":[{"id":"a","version":1},{"id":"b","version":5}]}`

	paged, err := req.MapResult(&transport.Response{Status: 200, Body: []byte(body)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	results, err := Results(paged)
	if err != nil {
		t.Fatal(err)
	}
	if results.Len() != 2 {
		t.Fatalf("Len = %d, want 2", results.Len())
	}
	second, _ := results.At(1)
	if v, _ := second.GetInt("version"); v != 5 {
		t.Errorf("version = %d, want 5", v)
	}
	if total, _ := paged.GetInt("total"); total != 2 {
		t.Errorf("total = %d", total)
	}
}

func TestMapResultTransportError(t *testing.T) {
	ep := testEndpoint(t)
	req := FetchByID(ep, "w1")
	_, _ = req.HTTPRequest()

	cause := errors.New("connection refused")
	_, err := req.MapResult(nil, cause)
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
	if req.State() != Failed {
		t.Errorf("State = %s, want failed", req.State())
	}
}

func TestMapContext(t *testing.T) {
	ep := testEndpoint(t)
	ctx := model.NewContext(model.WithBaseURI("https://api.example.com"))
	req := FetchByID(ep, "w1").WithContext(ctx)

	obj, err := req.MapResponse(&transport.Response{Status: 200, Body: []byte(`{"id":"w1","version":1}`)})
	if err != nil {
		t.Fatal(err)
	}
	if obj.Context() != ctx {
		t.Error("mapped object should carry the request context")
	}
}
