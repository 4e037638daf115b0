package meta

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type schedulerSettings struct {
	Schedulers int    `yaml:"schedulers"`
	Quota      int32  `yaml:"quota"`
	Name       string `yaml:"name"`
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	document := []byte("schedulers: 8\nquota: 2000\nname: ${env.SCHED_NAME}\n")
	err := fs.Upload(ctx, "mem://localhost/sched/config.yaml", 0644, bytes.NewReader(document))
	assert.NoError(t, err)
	t.Setenv("SCHED_NAME", "node-1")

	service := New(fs, "")
	var settings schedulerSettings
	err = service.Load(ctx, "mem://localhost/sched/config.yaml", &settings)
	assert.NoError(t, err)
	assert.Equal(t, 8, settings.Schedulers)
	assert.EqualValues(t, 2000, settings.Quota)
	assert.Equal(t, "node-1", settings.Name)
}

func TestLoadWithBaseURL(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	err := fs.Upload(ctx, "mem://localhost/base/settings.yaml", 0644, bytes.NewReader([]byte("schedulers: 2\n")))
	assert.NoError(t, err)

	service := New(fs, "mem://localhost/base")
	var settings schedulerSettings
	err = service.Load(ctx, "settings.yaml", &settings)
	assert.NoError(t, err)
	assert.Equal(t, 2, settings.Schedulers)
}

func TestLoadMissing(t *testing.T) {
	service := New(afs.New(), "")
	var settings schedulerSettings
	err := service.Load(context.Background(), "mem://localhost/absent.yaml", &settings)
	assert.Error(t, err)
}
