package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/retell-client/internal/http"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// perform sends req over the connection's transport and folds the outcome
// into a Result. Each failure keeps the kind it was given where it happened;
// only errors outside the taxonomy are wrapped, described by unexpected.
func perform(ctx context.Context, conn *Connection, req *http.Request, unexpected string) retell.Result[retell.Document] {
	transport, err := conn.HTTPClient()
	if err != nil {
		return fail(conn, err, unexpected)
	}

	resp, err := transport.Do(ctx, req)
	if err != nil {
		return fail(conn, err, unexpected)
	}

	if resp.Error != nil {
		return fail(conn, resp.Error, unexpected)
	}

	if !resp.IsSuccess() {
		return fail(conn, retell.NewAPIError(resp.StatusCode, resp.Body), unexpected)
	}

	// An empty or non-JSON body carries no data. Anything else that decoded
	// must be an object.
	doc := resp.Document()
	if doc == nil {
		if resp.Data != nil {
			return fail(conn, fmt.Errorf("%w: got %T", retell.ErrNotAnObject, resp.Data), unexpected)
		}

		doc = retell.Document{}
	}

	return retell.Success(retell.TagAPIResponse, doc)
}

func fail(conn *Connection, err error, unexpected string) retell.Result[retell.Document] {
	problem := retell.AsProblem(err, unexpected)

	cfg := conn.Config()
	cfg.Metrics.ObserveProblem(problem)

	if cfg.Logger != nil {
		cfg.Logger.Warn("Retell API call failed", map[string]interface{}{
			"kind":   string(problem.Kind()),
			"status": problem.Status(),
		})
	}

	return retell.Failure[retell.Document](retell.TagFor(problem), problem)
}
