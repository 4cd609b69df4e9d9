package common

import (
	"github.com/futig/docqa-bot/internal/config"
	pkgHTTP "github.com/futig/docqa-bot/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a connector from the shared client settings plus optional auth wrappers
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, auth ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
	opts = append(opts, auth...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}
