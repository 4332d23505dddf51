package source

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/codeGROOVE-dev/retry"
	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/util"
	"github.com/kapu/member-directory-go/pkg/errors"
	"go.uber.org/zap"
)

// RESTSource reads lists and items from the portal's list REST API. The host
// portal supplies an already-authenticated channel; this client only forwards
// the bearer token it was configured with.
type RESTSource struct {
	httpClient *http.Client
	siteURL    string
	token      string
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

func NewRESTSource(httpClient *http.Client, siteURL, token string, logger *zap.Logger) *RESTSource {
	return &RESTSource{
		httpClient: httpClient,
		siteURL:    strings.TrimSuffix(siteURL, "/"),
		token:      token,
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

// Lists enumerates visible generic lists on the site.
func (s *RESTSource) Lists(ctx context.Context) ([]domain.ListInfo, error) {
	params := url.Values{}
	params.Set("$select", "Id,Title,BaseTemplate,Hidden")

	body, err := s.doRequest(ctx, "/_api/web/lists", params)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if raw, err = decodeRows(body); err != nil {
		return nil, errors.NewSourceError("failed to decode list catalog", "rest", 502, err)
	}

	lists := make([]domain.ListInfo, 0, len(raw))
	for _, msg := range raw {
		var info domain.ListInfo
		if err := json.Unmarshal(msg, &info); err != nil {
			continue
		}
		if info.BaseTemplate != constants.SourceConfig.GenericListTemplate || info.Hidden {
			continue
		}
		lists = append(lists, info)
	}
	return lists, nil
}

// Items reads one projected page of rows from a list.
func (s *RESTSource) Items(ctx context.Context, listID string, fields []string, top int) ([]map[string]any, error) {
	if listID == "" {
		return []map[string]any{}, nil
	}

	params := url.Values{}
	params.Set("$select", strings.Join(fields, ","))
	params.Set("$top", fmt.Sprintf("%d", top))

	path := fmt.Sprintf("/_api/web/lists(guid'%s')/items", url.PathEscape(listID))
	body, err := s.doRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}

	raw, err := decodeRows(body)
	if err != nil {
		return nil, errors.NewSourceError("failed to decode item page", "rest", 502, err)
	}

	rows := make([]map[string]any, 0, len(raw))
	for _, msg := range raw {
		var row map[string]any
		if err := json.Unmarshal(msg, &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *RESTSource) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !s.breaker.CanExecute() {
		return nil, errors.NewSourceError("source circuit open", "rest", 503, nil)
	}

	reqURL := s.siteURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json;odata=nometadata")
			if s.token != "" {
				req.Header.Set("Authorization", "Bearer "+s.token)
			}

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return nil, errors.NewSourceError(
					fmt.Sprintf("source returned status %d", resp.StatusCode),
					"rest", resp.StatusCode, nil,
				)
			}
			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(constants.RetryConfig.MaxAttempts),
		retry.Delay(constants.RetryConfig.BaseDelay),
		retry.MaxJitter(constants.RetryConfig.Jitter),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("Source request failed, retrying",
				zap.Uint("attempt", n+1),
				zap.String("path", path),
				zap.Error(err),
			)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, err
	}

	s.breaker.RecordSuccess()
	return body, nil
}

// isRetryable treats network errors and throttling/server statuses as
// transient; other HTTP statuses are permanent.
func isRetryable(err error) bool {
	var srcErr *errors.SourceError
	if stderrors.As(err, &srcErr) {
		switch srcErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// decodeRows accepts both the bare-array and the enveloped ({"value": [...]}
// or {"d":{"results": [...]}}) response forms of the list API.
func decodeRows(body []byte) ([]json.RawMessage, error) {
	var direct []json.RawMessage
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var envelope struct {
		Value []json.RawMessage `json:"value"`
		D     struct {
			Results []json.RawMessage `json:"results"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Value != nil {
		return envelope.Value, nil
	}
	return envelope.D.Results, nil
}
