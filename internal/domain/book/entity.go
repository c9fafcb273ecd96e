package book

import "strings"

// Book 图书实体(聚合根)
// 设计说明:
// 1. ID是存储层分配的代理主键,进程生命周期内单调递增,删除后不复用
// 2. 业务身份是规范化后的(标题,作者)组合,見PairKey
// 3. Year为0表示未知年份(可选字段)
// 4. 字段顺序决定JSON序列化顺序(id,title,author,year,isbn)
type Book struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	ISBN   string `json:"isbn"`
}

// PairKey 图书的去重身份:规范化后的(标题,作者)组合
// 规范化 = 去首尾空白 + 转小写,保证"1984 / george orwell"
// 与" 1984 / George Orwell "视为同一本书
type PairKey struct {
	Title  string
	Author string
}

// NormalizePair 计算规范化的(标题,作者)组合
func NormalizePair(title, author string) PairKey {
	return PairKey{
		Title:  strings.ToLower(strings.TrimSpace(title)),
		Author: strings.ToLower(strings.TrimSpace(author)),
	}
}

// PairKey 返回本书的去重身份
func (b *Book) PairKey() PairKey {
	return NormalizePair(b.Title, b.Author)
}

// Clone 返回实体副本
// Store对外只返回副本,防止调用方绕过锁直接修改内部集合
func (b *Book) Clone() *Book {
	clone := *b
	return &clone
}

// NewBook 待入库的图书数据(尚未分配ID)
type NewBook struct {
	Title  string
	Author string
	Year   int
	ISBN   string
}

// Patch 部分更新载荷
// 设计说明:用指针区分"未提供该字段"和"提供了零值",
// nil字段保留原值,非nil字段覆盖
type Patch struct {
	Title  *string
	Author *string
	Year   *int
	ISBN   *string
}

// IsEmpty 判断载荷是否没有任何可识别字段
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil && p.ISBN == nil
}

// apply 把补丁应用到实体上(标题/作者入库前统一去首尾空白)
func (p Patch) apply(b *Book) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	if p.ISBN != nil {
		b.ISBN = strings.TrimSpace(*p.ISBN)
	}
}

// Criteria 图书过滤条件
// 多个条件之间为AND关系;nil字段表示不按该字段过滤
// 匹配策略:id/year精确匹配,字符串字段按规范化值精确匹配
// (去首尾空白+忽略大小写),保证过滤结果确定、可测试
type Criteria struct {
	ID     *uint
	Title  *string
	Author *string
	Year   *int
	ISBN   *string
}

// Matches 判断图书是否满足全部条件
func (c Criteria) Matches(b *Book) bool {
	if c.ID != nil && b.ID != *c.ID {
		return false
	}
	if c.Year != nil && b.Year != *c.Year {
		return false
	}
	if c.Title != nil && !normalizedEqual(*c.Title, b.Title) {
		return false
	}
	if c.Author != nil && !normalizedEqual(*c.Author, b.Author) {
		return false
	}
	if c.ISBN != nil && !normalizedEqual(*c.ISBN, b.ISBN) {
		return false
	}
	return true
}

// normalizedEqual 规范化后的字符串精确比较
func normalizedEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
