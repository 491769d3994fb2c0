// Package config defines the top-level configuration schema assembled
// from the per-component configs. It is loaded with cfgloader from
// config/${ENVIRONMENT}.yaml.
package config

import (
	"github.com/geodepot/geodepot/blobstore/diskstore"
	"github.com/geodepot/geodepot/blobstore/miniostore"
	"github.com/geodepot/geodepot/consistency"
	"github.com/geodepot/geodepot/http/server"
	"github.com/geodepot/geodepot/httpapi"
	"github.com/geodepot/geodepot/intake"
	"github.com/geodepot/geodepot/observability/alert"
	"github.com/geodepot/geodepot/observability/logger"
	"github.com/geodepot/geodepot/observability/tracing"
	"github.com/geodepot/geodepot/outbox"
	"github.com/geodepot/geodepot/pg"
)

type Config struct {
	App         App                 `yaml:"app"`
	Server      server.Config       `yaml:"server"`
	API         httpapi.Config      `yaml:"api"`
	PG          pg.Config           `yaml:"pg"`
	Storage     Storage             `yaml:"storage"`
	Intake      intake.Config       `yaml:"intake"`
	Outbox      outbox.WorkerConfig `yaml:"outbox"`
	Consistency consistency.Config  `yaml:"consistency"`
	Logger      logger.Config       `yaml:"logger"`
	Tracing     tracing.Config      `yaml:"tracing"`
	Alert       alert.Config        `yaml:"alert"`
}

type App struct {
	Name    string `yaml:"name"    default:"geodepot"`
	Version string `yaml:"version" default:"0.1.0"`
}

// Storage selects and configures the artifact store backend. Only the
// section matching Backend needs to be present.
type Storage struct {
	Backend string             `yaml:"backend" validate:"oneof=disk minio" default:"disk"`
	Disk    *diskstore.Config  `yaml:"disk"    validate:"required_if=Backend disk"`
	Minio   *miniostore.Config `yaml:"minio"   validate:"required_if=Backend minio"`
}
