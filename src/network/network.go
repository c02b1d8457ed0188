package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"
)

// DefaultRetryDelay is the first backoff step; it doubles on every retry.
const DefaultRetryDelay = time.Second

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger
	RetryDelay   time.Duration
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(cfg.Network.Proxy, cfg.Network.UserAgent),
		Logger:       log,
		RetryDelay:   DefaultRetryDelay,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	nm.Client = nm.createClient()
}

// -----------------------------------------------------------------------------

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// -----------------------------------------------------------------------------

// Fetch returns the raw bytes at location. HTTP(S) locations are retried with
// exponential backoff, anything else is read from the local filesystem.
func (nm *AsyncNetworkManager) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !IsRemote(location) {
		path := strings.TrimPrefix(location, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, helpers.NewNetworkError(fmt.Sprintf("read %s", path), err)
		}
		return data, nil
	}

	attempt := 0
	body, err := helpers.RetryWithBackoff(ctx, nm.Logger, location, nm.Config.Network.MaxRetries, nm.RetryDelay,
		func(ctx context.Context) ([]byte, error) {
			if attempt > 0 {
				nm.rotateProxy()
			}
			attempt++
			return nm.get(ctx, location)
		})
	if err != nil {
		return nil, helpers.NewNetworkError(fmt.Sprintf("fetch %s", location), err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
