package job

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"batch-transfer-sol/internal/logic/core"
	"batch-transfer-sol/internal/logic/instruction"
	"batch-transfer-sol/internal/types"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

var ErrInvalidJob = errors.New("invalid job")

// AccountSpec 是 job 文件中的一个账户
type AccountSpec struct {
	Pubkey   string `yaml:"pubkey"`   // base58 地址
	Signer   bool   `yaml:"signer"`   // 是否已签名
	Writable bool   `yaml:"writable"` // 是否可写
}

// Job 描述一次 ProcessInstruction 调用。
// 指令数据二选一：data 为 base58 编码的原始 instruction data；或由 kind + amounts 生成。
type Job struct {
	ID       string        `yaml:"id"`
	Program  string        `yaml:"program"` // 本程序地址，可为空
	Data     string        `yaml:"data"`
	Kind     string        `yaml:"kind"` // token / native
	Amounts  []uint64      `yaml:"amounts"`
	Accounts []AccountSpec `yaml:"accounts"`
}

// LoadJob 从 YAML 文件读取任务
func LoadJob(path string) (*Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}
	return ParseJob(raw)
}

func ParseJob(raw []byte) (*Job, error) {
	var j Job
	if err := yaml.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrInvalidJob, err)
	}
	if j.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidJob)
	}
	return &j, nil
}

// Resolve 转换为处理器入参
func (j *Job) Resolve() (programID types.Pubkey, accounts []core.AccountHandle, data []byte, err error) {
	if j.Program != "" {
		if programID, err = types.TryPubkeyFromBase58(j.Program); err != nil {
			return programID, nil, nil, fmt.Errorf("%w: program: %v", ErrInvalidJob, err)
		}
	}

	accounts = make([]core.AccountHandle, 0, len(j.Accounts))
	for i, spec := range j.Accounts {
		key, err := types.TryPubkeyFromBase58(spec.Pubkey)
		if err != nil {
			return programID, nil, nil, fmt.Errorf("%w: accounts[%d]: %v", ErrInvalidJob, i, err)
		}
		accounts = append(accounts, core.AccountHandle{
			Key:        key,
			IsSigner:   spec.Signer,
			IsWritable: spec.Writable,
		})
	}

	data, err = j.instructionData()
	if err != nil {
		return programID, nil, nil, err
	}
	return programID, accounts, data, nil
}

func (j *Job) instructionData() ([]byte, error) {
	switch {
	case j.Data != "" && j.Kind != "":
		return nil, fmt.Errorf("%w: data and kind are mutually exclusive", ErrInvalidJob)
	case j.Data != "":
		data, err := base58.Decode(j.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: data: %v", ErrInvalidJob, err)
		}
		return data, nil
	}

	var kind instruction.Kind
	switch strings.ToLower(j.Kind) {
	case "token":
		kind = instruction.KindTokenTransfer
	case "native":
		kind = instruction.KindNativeTransfer
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, j.Kind)
	}

	ix, err := instruction.New(kind, j.Amounts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return instruction.Encode(ix)
}
