package request

import (
	"errors"
	"fmt"

	"github.com/artpar/commercekit/core/model"
	"github.com/artpar/commercekit/core/schema"
	"github.com/artpar/commercekit/domain/transport"
	"github.com/artpar/commercekit/pkg/apierror"
)

// ResultEntity returns the entity a successful response decodes into.
func (r *Request) ResultEntity() *schema.Entity {
	if r.kind == Paged {
		return schema.PagedOf(r.endpoint.Entity)
	}
	return r.endpoint.Entity
}

// MapResponse decodes a response. 2xx bodies become an object of the result
// entity; other statuses fail with *apierror.Error. A request is mapped once.
func (r *Request) MapResponse(resp *transport.Response) (*model.Object, error) {
	if r.state == Mapped || r.state == Failed {
		return nil, fmt.Errorf("%w: %s (%s)", ErrRequestConsumed, r, r.state)
	}
	if resp == nil {
		r.state = Failed
		return nil, fmt.Errorf("map %s: %w", r, model.ErrExpectsParameter)
	}

	if !resp.IsSuccess() {
		r.state = Failed
		return nil, apierror.Parse(resp.Status, resp.Body, resp.CorrelationID)
	}

	obj, err := model.FromJSON(r.ResultEntity(), resp.Body, r.ctx)
	if err != nil {
		r.state = Failed
		return nil, fmt.Errorf("map %s: %w", r, err)
	}
	r.state = Mapped
	return obj, nil
}

// MapResult maps the outcome of an adapter call. Transport failures are
// returned as *apierror.NetworkError.
func (r *Request) MapResult(resp *transport.Response, err error) (*model.Object, error) {
	if err != nil {
		if r.state == Mapped || r.state == Failed {
			return nil, fmt.Errorf("%w: %s (%s)", ErrRequestConsumed, r, r.state)
		}
		r.state = Failed
		var apiErr *apierror.Error
		var netErr *apierror.NetworkError
		if errors.As(err, &apiErr) || errors.As(err, &netErr) {
			return nil, err
		}
		return nil, &apierror.NetworkError{Method: r.method, URL: r.String(), Err: err}
	}
	return r.MapResponse(resp)
}

// Results returns the result collection of a paged query object.
func Results(paged *model.Object) (*model.Collection, error) {
	return paged.GetCollection("results")
}
