package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// GraphQLHandler serves the single GraphQL endpoint over POST and GET.
type GraphQLHandler struct {
	Schema  graphql.Schema
	Timeout time.Duration
}

func NewGraphQLHandler(schema graphql.Schema, timeout time.Duration) *GraphQLHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GraphQLHandler{Schema: schema, Timeout: timeout}
}

type gqlRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Serve executes one GraphQL request.  Field errors are reported inside
// the 200 response; only malformed requests get a 400.
func (h *GraphQLHandler) Serve(c echo.Context) error {
	var req gqlRequest
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if v := c.QueryParam("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return c.JSON(http.StatusBadRequest, requestError("variables must be a JSON object"))
			}
		}
	} else if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, requestError("invalid request body"))
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, requestError("query is required"))
	}

	// Bound all database work done by resolvers for this request.
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	res := graphql.Do(graphql.Params{
		Schema:         h.Schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if res.HasErrors() {
		log.Debug().Str("operation", req.OperationName).Int("errors", len(res.Errors)).Msg("graphql request completed with errors")
	}
	return c.JSON(http.StatusOK, res)
}

func requestError(msg string) map[string]interface{} {
	return map[string]interface{}{
		"errors": []map[string]interface{}{{
			"message":    msg,
			"extensions": map[string]interface{}{"code": "BAD_REQUEST", "status": http.StatusBadRequest},
		}},
	}
}
