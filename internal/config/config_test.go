package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"batch-transfer-sol/internal/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

const sampleYaml = `
logger:
  format: json
  level: debug
programs:
  token_program: TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
kafka_producer:
  brokers: 127.0.0.1:9092
  topic: transfer-invocations
redis:
  addr: 127.0.0.1:6379
time_conf:
  invoke_timeout_ms: 1500
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYaml), 0o644))

	var c ProcessorConfig
	require.NoError(t, conf.Load(path, &c))

	assert.Equal(t, "json", c.LogConf.Format)
	assert.Equal(t, "debug", c.LogConf.Level)
	assert.Equal(t, "transfer-invocations", c.KafkaProducerConf.Topic)
	assert.Equal(t, 8, c.KafkaProducerConf.Partitions, "默认 8 个分区")
	assert.Equal(t, 1500*time.Millisecond, c.TimeConf.InvokeTimeout())
	assert.Equal(t, time.Minute, c.TimeConf.JobTimeout())

	system, token, err := c.ProgramsConf.Resolve()
	require.NoError(t, err)
	assert.Equal(t, consts.SystemProgram, system)
	assert.Equal(t, consts.TokenProgram2022, token)

	opt := c.KafkaProducerConf.ToKafkaOption()
	require.Len(t, opt.Topics, 1)
	assert.Equal(t, 8, opt.Topics[0].Partitions)
}

func TestProgramsConfig_Invalid(t *testing.T) {
	c := ProgramsConfig{SystemProgram: "not-base58-0OIl"}
	_, _, err := c.Resolve()
	assert.ErrorContains(t, err, "programs.system_program")
}

func TestLoadConfig_WithoutRedis(t *testing.T) {
	const yaml = `
logger:
  format: console
kafka_producer:
  brokers: 127.0.0.1:9092
  topic: transfer-invocations
time_conf:
  job_timeout_ms: 30000
`
	path := filepath.Join(t.TempDir(), "processor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	var c ProcessorConfig
	require.NoError(t, conf.Load(path, &c))
	assert.Empty(t, c.RedisConf.Addr)
	assert.Equal(t, 30*time.Second, c.TimeConf.JobTimeout())
}
