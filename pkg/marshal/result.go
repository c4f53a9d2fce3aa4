package marshal

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// Result 是一次 Marshal 调用的结果。
//
// 单条模式下 Records 与 Errors 长度为 1；批量模式下长度与输入序列相同，
// 第 i 项对应第 i 个源对象。隔离模式下失败元素的 Records[i] 与 Errors[i] 为 nil，
// 错误记录在 Failures[i]。
type Result struct {
	Many     bool
	Records  []*Record
	Errors   []*Record
	Failures []error

	mergeErrors bool
}

func newResult(many bool, n int) *Result {
	return &Result{
		Many:     many,
		Records:  make([]*Record, n),
		Errors:   make([]*Record, n),
		Failures: make([]error, n),
	}
}

func (r *Result) Len() int {
	return len(r.Records)
}

// One 返回单条模式的输出记录和错误记录。
func (r *Result) One() (*Record, *Record) {
	if len(r.Records) == 0 {
		return nil, nil
	}
	return r.Records[0], r.Errors[0]
}

// IndexedErrors 返回 下标 -> 错误记录，只包含存在校验错误的元素。
func (r *Result) IndexedErrors() map[int]*Record {
	indexed := make(map[int]*Record)
	for i, errs := range r.Errors {
		if errs.Len() > 0 {
			indexed[i] = errs
		}
	}
	return indexed
}

// MergedErrors 把所有元素的错误记录合并为一条，不保留下标。
// 同一字段的消息列表按元素顺序追加，嵌套详情以最后一个为准。
func (r *Result) MergedErrors() *Record {
	merged := NewRecord(0)
	for _, errs := range r.Errors {
		errs.Range(func(key Key, details any) bool {
			mergeDetails(merged, key, details)
			return true
		})
	}
	return merged
}

// Failed 返回隔离模式下失败元素的下标与错误。
func (r *Result) Failed() map[int]error {
	failed := make(map[int]error)
	for i, err := range r.Failures {
		if err != nil {
			failed[i] = err
		}
	}
	return failed
}

// Err 按下标顺序合并隔离模式下的失败，没有失败时返回 nil。
func (r *Result) Err() error {
	return merr.Combine(r.Failures...)
}

// Data 返回适合直接编码的输出：单条模式为 *Record，批量模式为 []*Record。
func (r *Result) Data() any {
	if !r.Many {
		out, _ := r.One()
		return out
	}
	return r.Records
}

// ErrorDetails 返回适合直接编码的错误信息：单条模式为 *Record，
// 批量模式为 map[int]*Record；WithIndexErrors(false) 时批量模式返回合并后的 *Record。
func (r *Result) ErrorDetails() any {
	if !r.Many {
		_, errs := r.One()
		return errs
	}
	if r.mergeErrors {
		return r.MergedErrors()
	}
	return r.IndexedErrors()
}

// invalidCount 返回存在校验错误的记录数。
func (r *Result) invalidCount() int {
	return lo.CountBy(r.Errors, func(errs *Record) bool { return errs.Len() > 0 })
}

func (r *Result) validationCount() int {
	return lo.SumBy(r.Errors, func(errs *Record) int { return errs.Len() })
}

func (r *Result) recordCount() int {
	return lo.CountBy(r.Records, func(out *Record) bool { return out != nil })
}

// ElementError 标记批量模式中失败元素的下标。
type ElementError struct {
	Index int
	Err   error
}

var _ error = (*ElementError)(nil)

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s[index=%d]: %v", merr.ErrElementFailed.Error(), e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, merr.ErrElementFailed) 成立，其余判断交给 Err。
func (e *ElementError) Is(target error) bool {
	return merr.Code(target) == merr.Code(merr.ErrElementFailed)
}

// FailedIndex 返回 err 中失败元素的下标。
func FailedIndex(err error) (int, bool) {
	var elemErr *ElementError
	if errors.As(err, &elemErr) {
		return elemErr.Index, true
	}
	return 0, false
}
