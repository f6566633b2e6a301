// Package nsapi はNetSapiensユーザーディレクトリAPIのクライアントを提供する。
package nsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/config"
)

// Client はUserSourceの実装
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
	apiKey     string
	pageLimit  int
}

// NewClient は新しいディレクトリAPIクライアントを生成する。
func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetTimeout(config.APIRequestTimeout)

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	pageLimit := cfg.APIPageLimit
	if pageLimit > config.MaxAPIPageLimit {
		pageLimit = config.MaxAPIPageLimit
	}

	host := strings.TrimRight(cfg.APIHost, "/")
	baseURL := host
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		baseURL = "https://" + host
	}

	return &Client{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    baseURL + "/ns-api/v2",
		apiKey:     cfg.APIKey,
		pageLimit:  pageLimit,
	}
}

// request はAPIへのGETリクエストを実行しレスポンスボディを返す。
// Circuit Breaker経由で実行され、接続エラー・5xxは失敗カウント対象。
func (c *Client) request(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetHeader(HeaderAuthorization, "Bearer "+c.apiKey).
			SetHeader(HeaderAccept, ContentTypeJSON).
			SetQueryParams(params).
			Get(c.baseURL + endpoint)

		if err != nil {
			return nil, &ConnectionError{Cause: err}
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		if statusCode != 200 {
			apiErr := &APIError{StatusCode: statusCode, Message: string(resp.Body())}
			slog.Error("directory api error",
				"event_id", "NS_API_ERR",
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			if apiErr.IsServerError() {
				return nil, apiErr
			}
			// 4xxはCBカウントに含めない
			return apiErr, nil
		}

		slog.Debug("directory api success",
			"latency_ms", latencyMs,
		)

		return resp.Body(), nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	if apiErr, ok := result.(*APIError); ok {
		return nil, apiErr
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}
	return body, nil
}

// FetchUsers はドメインの全ユーザーをstart/limit方式のページネーションで取得する。
// 取得件数がページサイズ未満になるか、ページ数上限に達するまで続ける。
// 1ページ目の失敗は呼び出し全体の失敗、2ページ目以降の失敗は取得済み分を
// そのまま返す（通話中はゼロ件より部分データの方がましなため）。
func (c *Client) FetchUsers(ctx context.Context, domain, site, department string) ([]RawUser, error) {
	endpoint := "/domains/" + url.PathEscape(domain) + "/users"

	var all []RawUser
	start := 0

	for page := 0; page < config.MaxFetchPages; page++ {
		params := map[string]string{
			"limit": strconv.Itoa(c.pageLimit),
			"start": strconv.Itoa(start),
		}
		if site != "" {
			params["site"] = site
		}
		if department != "" {
			params["department"] = department
		}

		body, err := c.request(ctx, endpoint, params)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("fetch users first page: %w", err)
			}
			slog.Warn("user fetch truncated after page failure",
				"event_id", "NS_FETCH_TRUNCATED",
				"domain", domain,
				"page", page,
				"fetched", len(all),
				"error", err.Error(),
			)
			return all, nil
		}

		var users []RawUser
		if err := json.Unmarshal(body, &users); err != nil {
			if page == 0 {
				return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			slog.Warn("user fetch truncated after decode failure",
				"event_id", "NS_FETCH_TRUNCATED",
				"domain", domain,
				"page", page,
				"fetched", len(all),
				"error", err.Error(),
			)
			return all, nil
		}

		all = append(all, users...)

		if len(users) < c.pageLimit {
			return all, nil
		}
		start += c.pageLimit
	}

	slog.Warn("user fetch hit page ceiling, result may be incomplete",
		"event_id", "NS_FETCH_CEILING",
		"domain", domain,
		"fetched", len(all),
	)
	return all, nil
}

// GetUser は単一ユーザーの情報を取得する。
func (c *Client) GetUser(ctx context.Context, domain, user string) (*RawUser, error) {
	endpoint := "/domains/" + url.PathEscape(domain) + "/users/" + url.PathEscape(user)

	body, err := c.request(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var raw RawUser
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &raw, nil
}

// IsAutoAttendant はユーザーのservice-codeからオートアテンダントかどうかを判定する。
// 判定結果は退出時の戻り先というUX上の便宜にしか影響しないため、
// 取得失敗はエラーではなくfalseとして扱う。
func (c *Client) IsAutoAttendant(ctx context.Context, domain, user string) bool {
	raw, err := c.GetUser(ctx, domain, user)
	if err != nil {
		slog.Warn("auto attendant check failed, assuming not an attendant",
			"event_id", "NS_AA_CHECK_ERR",
			"domain", domain,
			"user", user,
			"error", err.Error(),
		)
		return false
	}
	return strings.HasPrefix(strings.ToLower(raw.ServiceCode), serviceCodeAutoAttendant)
}
