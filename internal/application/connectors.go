package application

import (
	"trade_pilot/internal/config"
	"trade_pilot/pkg/application/connectors"
	"trade_pilot/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault

func redisConnector(cfg config.Redis) *connectors.Redis {
	return &connectors.Redis{
		Username:       cfg.Username,
		Password:       cfg.Password,
		Address:        cfg.Address,
		DatabaseNumber: cfg.DB,
	}
}
