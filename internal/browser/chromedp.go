package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// ChromeSession drives a Chrome instance via the DevTools protocol and
// records every outbound request it observes, including headers that
// only surface in the ExtraInfo event (Authorization among them).
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration

	mu       sync.Mutex
	requests []*Request
	byID     map[network.RequestID]*Request

	closeOnce sync.Once
}

var _ Session = (*ChromeSession)(nil)
var _ CredentialTyper = (*ChromeSession)(nil)

// NewChromeSession launches a browser. The caller owns the session and
// must Close it.
func NewChromeSession(headless bool, navTimeout time.Duration) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		navTimeout:  navTimeout,
		byID:        make(map[network.RequestID]*Request),
	}
	chromedp.ListenTarget(ctx, s.onEvent)

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

func (s *ChromeSession) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		req := &Request{
			URL:     e.Request.URL,
			Headers: headerMap(e.Request.Headers),
		}
		if e.Request.HasPostData {
			for _, entry := range e.Request.PostDataEntries {
				if decoded, err := base64.StdEncoding.DecodeString(entry.Bytes); err == nil {
					req.Body += string(decoded)
				}
			}
		}
		s.mu.Lock()
		s.byID[e.RequestID] = req
		s.requests = append(s.requests, req)
		s.mu.Unlock()

	case *network.EventRequestWillBeSentExtraInfo:
		// Cookie and authorization headers often only appear here.
		s.mu.Lock()
		if req, ok := s.byID[e.RequestID]; ok {
			for k, v := range headerMap(e.Headers) {
				if _, exists := req.Headers[k]; !exists {
					req.Headers[k] = v
				}
			}
		}
		s.mu.Unlock()
	}
}

func headerMap(h network.Headers) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	tctx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()
	if err := chromedp.Run(tctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

func (s *ChromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := s.bounded(ctx, timeout)
	defer cancel()
	err := chromedp.Run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrWaitTimeout
	}
	return err
}

func (s *ChromeSession) WaitRequest(ctx context.Context, match func(Request) bool, timeout time.Duration) (Request, error) {
	deadline := time.Now().Add(timeout)
	scanned := 0
	for {
		s.mu.Lock()
		for ; scanned < len(s.requests); scanned++ {
			r := *s.requests[scanned]
			if match(r) {
				s.mu.Unlock()
				return r, nil
			}
		}
		s.mu.Unlock()

		if time.Now().After(deadline) {
			return Request{}, ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return Request{}, ctx.Err()
		case <-s.ctx.Done():
			return Request{}, fmt.Errorf("browser closed: %w", s.ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (s *ChromeSession) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	for i, r := range s.requests {
		out[i] = *r
	}
	return out
}

// TypeCredentials fills the identity provider's login form. Selector
// lists cover the variants the login page has shipped with.
func (s *ChromeSession) TypeCredentials(ctx context.Context, email, password string) error {
	const (
		emailSel    = `input#Email, input[name='Email'], input.email-input`
		passwordSel = `input#Password, input[name='Password'], input.password-input`
		submitSel   = `button[type='submit'], input[type='submit'], .btn-primary`
	)

	tctx, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()

	err := chromedp.Run(tctx,
		chromedp.WaitVisible(emailSel, chromedp.ByQuery),
		chromedp.SendKeys(emailSel, email, chromedp.ByQuery),
		chromedp.WaitVisible(passwordSel, chromedp.ByQuery),
		chromedp.SendKeys(passwordSel, password, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill login form: %w", err)
	}

	// Click the submit button if there is one; otherwise Enter on the
	// password field submits the form.
	if err := chromedp.Run(tctx, chromedp.Click(submitSel, chromedp.ByQuery)); err != nil {
		if err := chromedp.Run(tctx, chromedp.SendKeys(passwordSel, kb.Enter, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("submit login form: %w", err)
		}
	}
	return nil
}

func (s *ChromeSession) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	// Chain the caller's context onto the browser context so both
	// cancellation paths apply.
	merged, cancelMerged := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancelMerged)
	tctx, cancelTimeout := context.WithTimeout(merged, timeout)
	return tctx, func() {
		stop()
		cancelTimeout()
		cancelMerged()
	}
}

// Close shuts the browser down. Always safe to call, including after a
// failed launch.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.allocCancel()
	})
	return nil
}
