package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 包元信息
const (
	Title   = "ohashi"
	Author  = "Bryan Veloso"
	License = "BSD"
)

// Phase 发布阶段
type Phase string

const (
	PhaseAlpha Phase = "alpha"
	PhaseBeta  Phase = "beta"
	PhaseRC    Phase = "rc"
	PhaseFinal Phase = "final"
)

// ErrInvalidVersion 版本元组不合法
var ErrInvalidVersion = errors.New("invalid version tuple")

var phaseCodes = map[Phase]string{
	PhaseAlpha: "a",
	PhaseBeta:  "b",
	PhaseRC:    "c",
}

// Info 版本五元组 (major, minor, micro, phase, serial)
type Info struct {
	Major  int
	Minor  int
	Micro  int
	Phase  Phase
	Serial int
}

// Current 当前发布版本
var Current = Info{Major: 0, Minor: 0, Micro: 4, Phase: PhaseAlpha, Serial: 0}

// FromTuple 从原始五元组构建版本信息，长度或阶段名不合法时返回 ErrInvalidVersion
func FromTuple(parts ...any) (Info, error) {
	if len(parts) != 5 {
		return Info{}, fmt.Errorf("%w: expected 5 parts, got %d", ErrInvalidVersion, len(parts))
	}
	nums := make([]int, 0, 4)
	for _, idx := range []int{0, 1, 2, 4} {
		n, ok := parts[idx].(int)
		if !ok {
			return Info{}, fmt.Errorf("%w: part %d is %T, not int", ErrInvalidVersion, idx, parts[idx])
		}
		nums = append(nums, n)
	}
	var phase Phase
	switch p := parts[3].(type) {
	case string:
		phase = Phase(p)
	case Phase:
		phase = p
	default:
		return Info{}, fmt.Errorf("%w: phase is %T", ErrInvalidVersion, parts[3])
	}
	info := Info{Major: nums[0], Minor: nums[1], Micro: nums[2], Phase: phase, Serial: nums[3]}
	if err := info.check(); err != nil {
		return Info{}, err
	}
	return info, nil
}

func (v Info) check() error {
	switch v.Phase {
	case PhaseAlpha, PhaseBeta, PhaseRC, PhaseFinal:
		return nil
	}
	return fmt.Errorf("%w: unknown phase %q", ErrInvalidVersion, v.Phase)
}

// Get 生成版本号字符串
// main = X.Y[.Z]
// sub  = .dev（alpha 且序号为 0）| {a|b|c}N（alpha/beta/rc）| 空（final）
func Get(v Info) (string, error) {
	if err := v.check(); err != nil {
		return "", err
	}

	parts := []string{strconv.Itoa(v.Major), strconv.Itoa(v.Minor)}
	if v.Micro != 0 {
		parts = append(parts, strconv.Itoa(v.Micro))
	}
	main := strings.Join(parts, ".")

	sub := ""
	if v.Phase == PhaseAlpha && v.Serial == 0 {
		sub = ".dev"
	} else if v.Phase != PhaseFinal {
		sub = phaseCodes[v.Phase] + strconv.Itoa(v.Serial)
	}
	return main + sub, nil
}

// MustGet 与 Get 相同，元组不合法时直接 panic
func MustGet(v Info) string {
	s, err := Get(v)
	if err != nil {
		panic(err)
	}
	return s
}

func (v Info) String() string {
	return MustGet(v)
}
