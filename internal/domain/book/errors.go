package book

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNoMoreBooks 翻页越界或没有匹配的图书
	ErrNoMoreBooks = apperrors.New(apperrors.ErrCodeNoMoreBooks, "没有更多图书")

	// ErrDuplicateBook 更新会导致(标题,作者)与其他在库图书重复
	ErrDuplicateBook = apperrors.New(apperrors.ErrCodeDuplicateEntry, "同名同作者的图书已存在")

	// ErrEmptyPayload 更新载荷没有任何可识别字段
	ErrEmptyPayload = apperrors.New(apperrors.ErrCodeEmptyPayload, "更新内容为空")

	// ErrInvalidBookID 图书ID必须是正整数
	ErrInvalidBookID = apperrors.New(apperrors.ErrCodeInvalidBookID, "图书ID必须是正整数")

	// ErrTitleRequired 标题不能为空
	ErrTitleRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "标题不能为空")

	// ErrAuthorRequired 作者不能为空
	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空")

	// ErrInvalidYear 年份超出合理范围
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidParams, "年份超出合理范围")
)
