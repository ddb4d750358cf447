package platformtest

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/artpar/commercekit/pkg/apierror"
)

// Seed stores obj under resource, filling in id, version and timestamps
// when absent, and returns the stored copy.
func (p *Platform) Seed(resource string, obj map[string]any) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := p.insertLocked(resource, clone(obj))
	return clone(stored)
}

// Get returns a copy of a stored object.
func (p *Platform) Get(resource, id string) (map[string]any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.data[resource][id]
	if !ok {
		return nil, false
	}
	return clone(obj), true
}

// Count returns the number of stored objects of resource.
func (p *Platform) Count(resource string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data[resource])
}

func (p *Platform) insertLocked(resource string, obj map[string]any) map[string]any {
	id, _ := obj["id"].(string)
	if id == "" {
		id = uuid.NewString()
		obj["id"] = id
	}
	if _, ok := obj["version"]; !ok {
		obj["version"] = int64(1)
	}
	now := p.now().Format(time.RFC3339Nano)
	if _, ok := obj["createdAt"]; !ok {
		obj["createdAt"] = now
	}
	obj["lastModifiedAt"] = now

	if p.data[resource] == nil {
		p.data[resource] = make(map[string]map[string]any)
	}
	if _, exists := p.data[resource][id]; !exists {
		p.order[resource] = append(p.order[resource], id)
	}
	p.data[resource][id] = obj
	return obj
}

// lookupLocked resolves a path reference: an id or "key=<key>".
func (p *Platform) lookupLocked(resource, ref string) (map[string]any, bool) {
	if key, ok := strings.CutPrefix(ref, "key="); ok {
		for _, obj := range p.data[resource] {
			if k, _ := obj["key"].(string); k == key {
				return obj, true
			}
		}
		return nil, false
	}
	obj, ok := p.data[resource][ref]
	return obj, ok
}

func (p *Platform) keyTakenLocked(resource, key, exceptID string) bool {
	if key == "" {
		return false
	}
	for id, obj := range p.data[resource] {
		if k, _ := obj["key"].(string); k == key && id != exceptID {
			return true
		}
	}
	return false
}

func (p *Platform) handleCreate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, apiErr := decodeObject(r.Body)
		if apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}
		delete(draft, "id")
		delete(draft, "version")

		p.mu.Lock()
		defer p.mu.Unlock()

		if key, _ := draft["key"].(string); p.keyTakenLocked(resource, key, "") {
			apierror.Write(w, duplicateKey(key))
			return
		}
		if resource == "orders/edits" {
			if _, ok := draft["stagedActions"]; !ok {
				draft["stagedActions"] = []any{}
			}
		}
		obj := p.insertLocked(resource, draft)
		writeJSON(w, http.StatusCreated, obj)
	}
}

func (p *Platform) handleFetch(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		p.mu.Lock()
		defer p.mu.Unlock()

		obj, ok := p.lookupLocked(resource, ref)
		if !ok {
			apierror.Write(w, notFound(resource, ref))
			return
		}
		writeJSON(w, http.StatusOK, obj)
	}
}

func (p *Platform) handleQuery(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		preds, err := parsePredicates(q["where"])
		if err != nil {
			apierror.Write(w, apierror.New(http.StatusBadRequest, err.Error()).
				Code(apierror.CodeInvalidInput, err.Error()).
				Build())
			return
		}

		p.mu.Lock()
		var matched []map[string]any
		for _, id := range p.order[resource] {
			obj := p.data[resource][id]
			if obj != nil && preds.match(obj) {
				matched = append(matched, clone(obj))
			}
		}
		p.mu.Unlock()

		if sortExpr := q.Get("sort"); sortExpr != "" {
			sortObjects(matched, sortExpr)
		}
		writeJSON(w, http.StatusOK, page(matched, q.Get("limit"), q.Get("offset"), q.Get("withTotal")))
	}
}

type updateBody struct {
	Version *int64           `json:"version"`
	Actions []map[string]any `json:"actions"`
}

func (p *Platform) handleUpdate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		var body updateBody
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
			apierror.Write(w, apierror.New(http.StatusBadRequest, "Request body does not contain valid JSON.").
				Code(apierror.CodeInvalidInput, err.Error()).
				Build())
			return
		}
		if body.Version == nil {
			apierror.Write(w, apierror.RequiredField("version"))
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		obj, ok := p.lookupLocked(resource, ref)
		if !ok {
			apierror.Write(w, notFound(resource, ref))
			return
		}
		current := versionOf(obj)
		if *body.Version != current {
			apierror.Write(w, apierror.Conflict(*body.Version, current))
			return
		}

		// Actions apply atomically: work on a copy.
		updated := clone(obj)
		for _, a := range body.Actions {
			if apiErr := applyAction(updated, a); apiErr != nil {
				apierror.Write(w, apiErr)
				return
			}
		}
		id, _ := updated["id"].(string)
		if key, _ := updated["key"].(string); p.keyTakenLocked(resource, key, id) {
			apierror.Write(w, duplicateKey(key))
			return
		}
		if len(body.Actions) > 0 {
			updated["version"] = current + 1
			updated["lastModifiedAt"] = p.now().Format(time.RFC3339Nano)
		}
		p.data[resource][id] = updated
		writeJSON(w, http.StatusOK, updated)
	}
}

func (p *Platform) handleDelete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		version, err := strconv.ParseInt(r.URL.Query().Get("version"), 10, 64)
		if err != nil {
			apierror.Write(w, apierror.RequiredField("version"))
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		obj, ok := p.lookupLocked(resource, ref)
		if !ok {
			apierror.Write(w, notFound(resource, ref))
			return
		}
		if current := versionOf(obj); version != current {
			apierror.Write(w, apierror.Conflict(version, current))
			return
		}
		p.removeLocked(resource, obj["id"].(string))
		writeJSON(w, http.StatusOK, obj)
	}
}

func (p *Platform) removeLocked(resource, id string) {
	delete(p.data[resource], id)
	ids := p.order[resource]
	for i, v := range ids {
		if v == id {
			p.order[resource] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// Custom objects are addressed by container and key and created or
// replaced by POST.

const customObjects = "custom-objects"

func (p *Platform) findCustomObjectLocked(container, key string) (map[string]any, bool) {
	for _, obj := range p.data[customObjects] {
		c, _ := obj["container"].(string)
		k, _ := obj["key"].(string)
		if c == container && k == key {
			return obj, true
		}
	}
	return nil, false
}

func (p *Platform) handleCustomObjectUpsert(w http.ResponseWriter, r *http.Request) {
	draft, apiErr := decodeObject(r.Body)
	if apiErr != nil {
		apierror.Write(w, apiErr)
		return
	}
	container, _ := draft["container"].(string)
	key, _ := draft["key"].(string)
	if container == "" {
		apierror.Write(w, apierror.RequiredField("container"))
		return
	}
	if key == "" {
		apierror.Write(w, apierror.RequiredField("key"))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, ok := p.findCustomObjectLocked(container, key)
	if !ok {
		delete(draft, "version")
		writeJSON(w, http.StatusCreated, p.insertLocked(customObjects, draft))
		return
	}

	current := versionOf(existing)
	if v, present := draft["version"]; present {
		if expected, _ := toInt64(v); expected != current {
			apierror.Write(w, apierror.Conflict(expected, current))
			return
		}
	}
	existing["value"] = draft["value"]
	existing["version"] = current + 1
	existing["lastModifiedAt"] = p.now().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, existing)
}

func (p *Platform) handleCustomObjectFetch(w http.ResponseWriter, r *http.Request) {
	container, key := chi.URLParam(r, "container"), chi.URLParam(r, "key")
	p.mu.Lock()
	defer p.mu.Unlock()

	obj, ok := p.findCustomObjectLocked(container, key)
	if !ok {
		apierror.Write(w, notFound("CustomObject", container+"/"+key))
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (p *Platform) handleCustomObjectContainer(w http.ResponseWriter, r *http.Request) {
	container := chi.URLParam(r, "container")
	q := r.URL.Query()

	p.mu.Lock()
	var matched []map[string]any
	for _, id := range p.order[customObjects] {
		obj := p.data[customObjects][id]
		if c, _ := obj["container"].(string); c == container {
			matched = append(matched, clone(obj))
		}
	}
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, page(matched, q.Get("limit"), q.Get("offset"), q.Get("withTotal")))
}

func (p *Platform) handleCustomObjectDelete(w http.ResponseWriter, r *http.Request) {
	container, key := chi.URLParam(r, "container"), chi.URLParam(r, "key")
	p.mu.Lock()
	defer p.mu.Unlock()

	obj, ok := p.findCustomObjectLocked(container, key)
	if !ok {
		apierror.Write(w, notFound("CustomObject", container+"/"+key))
		return
	}
	if raw := r.URL.Query().Get("version"); raw != "" {
		version, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apierror.Write(w, apierror.InvalidField("version", "Version must be an integer."))
			return
		}
		if current := versionOf(obj); version != current {
			apierror.Write(w, apierror.Conflict(version, current))
			return
		}
	}
	p.removeLocked(customObjects, obj["id"].(string))
	writeJSON(w, http.StatusOK, obj)
}

// page builds a paged query result.
func page(objs []map[string]any, limitRaw, offsetRaw, withTotal string) map[string]any {
	limit, err := strconv.Atoi(limitRaw)
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}
	offset, err := strconv.Atoi(offsetRaw)
	if err != nil || offset < 0 {
		offset = 0
	}

	results := []map[string]any{}
	if offset < len(objs) {
		end := min(offset+limit, len(objs))
		results = objs[offset:end]
	}
	out := map[string]any{
		"limit":   limit,
		"offset":  offset,
		"count":   len(results),
		"results": results,
	}
	if withTotal != "false" {
		out["total"] = len(objs)
	}
	return out
}

// sortObjects sorts by "<field> asc|desc"; only top-level fields are supported.
func sortObjects(objs []map[string]any, expr string) {
	field, dir, _ := strings.Cut(strings.TrimSpace(expr), " ")
	desc := strings.EqualFold(strings.TrimSpace(dir), "desc")
	sort.SliceStable(objs, func(i, j int) bool {
		a, b := fmt.Sprint(objs[i][field]), fmt.Sprint(objs[j][field])
		if desc {
			return a > b
		}
		return a < b
	})
}

func decodeObject(body io.Reader) (map[string]any, *apierror.Error) {
	var obj map[string]any
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&obj); err != nil || obj == nil {
		msg := "Request body does not contain valid JSON."
		return nil, apierror.New(http.StatusBadRequest, msg).Code(apierror.CodeInvalidInput, msg).Build()
	}
	return obj, nil
}

func notFound(resource, ref string) *apierror.Error {
	return apierror.NotFound(resourceType(resource), ref)
}

func duplicateKey(key string) *apierror.Error {
	msg := fmt.Sprintf("A duplicate value '\"%s\"' exists for field 'key'.", key)
	return apierror.New(http.StatusBadRequest, msg).
		Field("key", "DuplicateField", msg).
		InvalidValue(key).
		Build()
}

func resourceType(resource string) string {
	switch resource {
	case "stores":
		return "Store"
	case "categories":
		return "Category"
	case "carts":
		return "Cart"
	case "zones":
		return "Zone"
	case "orders/edits":
		return "OrderEdit"
	}
	return ""
}

func versionOf(obj map[string]any) int64 {
	v, _ := toInt64(obj["version"])
	return v
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), n == float64(int64(n))
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// clone deep-copies JSON-shaped values.
func clone(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	return cloneValue(obj).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
