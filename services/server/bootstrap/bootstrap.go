// Package bootstrap exposes the bonfire REST server to the unified CLI.
package bootstrap

import (
	"context"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/cuihairu/bonfire/services/server/internal/config"
	"github.com/cuihairu/bonfire/services/server/internal/handler"
	"github.com/cuihairu/bonfire/services/server/internal/svc"
)

type Config = config.Config

// LoadConfig decodes YAML into a server config, applying defaults.
func LoadConfig(raw []byte) (Config, error) {
	var c Config
	if err := conf.LoadFromYamlBytes(raw, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Run serves until ctx is cancelled or the server is stopped by a signal.
func Run(ctx context.Context, c Config) error {
	server, err := rest.NewServer(c.RestConf)
	if err != nil {
		return err
	}
	svcCtx := svc.NewServiceContext(c)
	handler.RegisterHandlers(server, svcCtx)
	svcCtx.Start()
	defer svcCtx.Stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			server.Stop()
		case <-done:
		}
	}()

	logx.Infof("bonfire listening on %s:%d", c.Host, c.Port)
	server.Start()
	return nil
}
