// Package diff 文本差异比较，基于 diff-match-patch
package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op 差异片段类型
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Segment 一段差异
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Result 两段文本的比较结果
type Result struct {
	Segments   []Segment `json:"segments"`
	Patch      string    `json:"patch"`
	Insertions int       `json:"insertions"` // 新增字符数
	Deletions  int       `json:"deletions"`  // 删除字符数
	Distance   int       `json:"distance"`   // Levenshtein 距离
}

// Compute 计算 from -> to 的差异，结果按语义清理，便于阅读
func Compute(from, to string) Result {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	res := Result{
		Segments: make([]Segment, 0, len(diffs)),
		Patch:    dmp.PatchToText(dmp.PatchMake(from, diffs)),
		Distance: dmp.DiffLevenshtein(diffs),
	}

	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
			res.Insertions += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			op = OpDelete
			res.Deletions += len([]rune(d.Text))
		default:
			op = OpEqual
		}
		res.Segments = append(res.Segments, Segment{Op: op, Text: d.Text})
	}

	return res
}

// Apply 将 Compute 生成的补丁应用到 text，返回结果及是否全部应用成功
func Apply(text, patch string) (string, bool) {
	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(patch)
	if err != nil {
		return text, false
	}
	out, applied := dmp.PatchApply(patches, text)
	for _, ok := range applied {
		if !ok {
			return out, false
		}
	}
	return out, true
}
