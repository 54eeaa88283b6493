package httpnode

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/nomic-io/nomic-wallet/internal/core/ports"
	"github.com/nomic-io/nomic-wallet/pkg/circuitbreaker"
	"github.com/nomic-io/nomic-wallet/pkg/signatory"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

const (
	// RequestIDHeader carries the id used to correlate client and node logs
	RequestIDHeader = "X-Request-Id"

	DefaultRequestTimeout = 15 * time.Second
	DefaultRateLimit      = 10
)

var (
	// ErrNullEndpoint ...
	ErrNullEndpoint = errors.New("node endpoint must not be null")
	// ErrUnsupportedTransaction ...
	ErrUnsupportedTransaction = errors.New("transaction type not supported by node")
	// ErrTransactionNotSigned ...
	ErrTransactionNotSigned = errors.New("only signed transactions can be sent")
)

// Opts is the struct given to NewNodeClient.
type Opts struct {
	Endpoint       string
	RequestTimeout time.Duration
	RateLimit      int
}

func (o *Opts) validate() error {
	if len(o.Endpoint) <= 0 {
		return ErrNullEndpoint
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.RateLimit <= 0 {
		o.RateLimit = DefaultRateLimit
	}
	return nil
}

type client struct {
	endpoint string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker
	limiter  ratelimit.Limiter
}

// NewNodeClient returns a ports.NodeClient talking JSON over HTTP with the
// node REST interface.
func NewNodeClient(opts Opts) (ports.NodeClient, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &client{
		endpoint: strings.TrimSuffix(opts.Endpoint, "/"),
		http:     &http.Client{Timeout: opts.RequestTimeout},
		cb:       circuitbreaker.NewCircuitBreaker("node"),
		limiter:  ratelimit.New(opts.RateLimit),
	}, nil
}

func (c *client) GetAccount(
	ctx context.Context, pubkey []byte,
) (ports.Account, error) {
	url := fmt.Sprintf("%s/accounts/%s", c.endpoint, hex.EncodeToString(pubkey))
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.Account{}, err
	}

	// accounts that never received funds are unknown to the node.
	if status == http.StatusNotFound {
		return ports.Account{}, nil
	}
	if err := checkStatus(status, body); err != nil {
		return ports.Account{}, err
	}

	resp := accountResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ports.Account{}, fmt.Errorf("%w: invalid account: %s", ports.ErrNetwork, err)
	}
	return ports.Account{Nonce: resp.Nonce, Balance: resp.Balance}, nil
}

func (c *client) GetSignatorySet(ctx context.Context) (*signatory.Set, error) {
	url := fmt.Sprintf("%s/signatories", c.endpoint)
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, body); err != nil {
		return nil, err
	}

	resp := signatorySetResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid signatory set: %s", ports.ErrNetwork, err)
	}
	return resp.toSet()
}

func (c *client) Send(ctx context.Context, tx transaction.Transaction) error {
	if tx.Status() != transaction.StatusSigned {
		return ErrTransactionNotSigned
	}
	req, err := newTransactionRequest(tx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/transactions", c.endpoint)
	status, body, err := c.do(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	return checkStatus(status, body)
}

type response struct {
	status int
	body   []byte
	// set when the request was interrupted by the caller's context, which
	// says nothing about the health of the node.
	ctxErr error
}

// do performs the request once a rate limiter token is available. Failures
// caused by the caller's context are returned as is, all others are wrapped
// with ports.ErrNetwork.
func (c *client) do(
	ctx context.Context, method, url string, payload []byte,
) (int, []byte, error) {
	if err := c.waitToken(ctx); err != nil {
		return 0, nil, err
	}

	requestID := uuid.New().String()
	logger := log.WithFields(log.Fields{
		"request_id": requestID,
		"method":     method,
		"url":        url,
	})

	iResp, err := c.cb.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set(RequestIDHeader, requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return &response{ctxErr: ctx.Err()}, nil
			}
			return nil, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(res.Body)
		if err != nil {
			if ctx.Err() != nil {
				return &response{ctxErr: ctx.Err()}, nil
			}
			return nil, err
		}
		// only server side failures count against the breaker.
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf(
				"status %d: %s", res.StatusCode, strings.TrimSpace(string(data)),
			)
		}
		return &response{status: res.StatusCode, body: data}, nil
	})
	if err != nil {
		logger.WithError(err).Debug("node request failed")
		return 0, nil, fmt.Errorf("%w: %s", ports.ErrNetwork, err)
	}

	resp := iResp.(*response)
	if resp.ctxErr != nil {
		logger.WithError(resp.ctxErr).Debug("node request interrupted")
		return 0, nil, resp.ctxErr
	}
	logger.WithField("status", resp.status).Debug("node request completed")
	return resp.status, resp.body, nil
}

// waitToken blocks until the rate limiter grants a token or ctx is done.
func (c *client) waitToken(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	taken := make(chan struct{})
	go func() {
		c.limiter.Take()
		close(taken)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-taken:
		return nil
	}
}

func checkStatus(status int, body []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}
	return fmt.Errorf(
		"%w: status %d: %s", ports.ErrNetwork, status, strings.TrimSpace(string(body)),
	)
}
