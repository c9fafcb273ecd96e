package book

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 可识别的查询参数键集合
// title/author/id/year/isbn用于过滤,page/limit用于分页
var validQueryKeys = map[string]struct{}{
	"title":  {},
	"author": {},
	"id":     {},
	"year":   {},
	"isbn":   {},
	"page":   {},
	"limit":  {},
}

// ParseBookID 解析图书ID
// 只接受正整数的字符串表示;非数字、零、负数、小数一律拒绝
func ParseBookID(raw string) (uint, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, ErrInvalidBookID
	}
	return uint(n), nil
}

// ValidateQuery 校验查询参数
// 规则:
// 1. 所有键必须在可识别集合内,未知键直接报错并点名(不是静默忽略)
// 2. page/limit如出现,必须是正整数
// 3. id如出现必须是正整数,year必须是整数
func ValidateQuery(params map[string]string) error {
	var invalid []string
	for key := range params {
		if _, ok := validQueryKeys[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		// 排序保证错误信息稳定
		sort.Strings(invalid)
		return apperrors.New(apperrors.ErrCodeInvalidQueryKey,
			"无法识别的查询参数: "+strings.Join(invalid, ", "))
	}

	for _, key := range []string{"page", "limit"} {
		if raw, ok := params[key]; ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil || n <= 0 {
				return apperrors.New(apperrors.ErrCodeInvalidParams,
					fmt.Sprintf("参数%s必须是正整数", key))
			}
		}
	}

	if raw, ok := params["id"]; ok {
		if _, err := ParseBookID(raw); err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "参数id必须是正整数")
		}
	}

	if raw, ok := params["year"]; ok {
		if _, err := strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "参数year必须是整数")
		}
	}

	return nil
}

// ValidateNewBook 校验新建图书载荷
// 标题和作者去空白后必须非空;年份如提供必须在合理范围内
func ValidateNewBook(n NewBook) error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(n.Author) == "" {
		return ErrAuthorRequired
	}
	if !yearInRange(n.Year) {
		return ErrInvalidYear
	}
	return nil
}

// ValidatePatch 校验更新载荷
// 所有字段可选,但出现的字段必须各自满足与新建相同的约束;
// 一个字段都没有的载荷视为参数错误
func ValidatePatch(p Patch) error {
	if p.IsEmpty() {
		return ErrEmptyPayload
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Author != nil && strings.TrimSpace(*p.Author) == "" {
		return ErrAuthorRequired
	}
	if p.Year != nil && !yearInRange(*p.Year) {
		return ErrInvalidYear
	}
	return nil
}

// yearInRange 年份合理范围:0到明年
// 0表示未知年份,上限留一年余量覆盖预发行图书
func yearInRange(year int) bool {
	return year >= 0 && year <= time.Now().Year()+1
}
