package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"cheeseshop/internal/metrics"
	"cheeseshop/internal/services"
	"cheeseshop/internal/storage"
)

const (
	msgTypeNameTaken  = "Cheese type with this name already exists"
	msgTitleTaken     = "Cheese with this title already exists"
	msgTypeNotFound   = "Cheese type not found"
	msgCheeseNotFound = "Cheese not found"
	msgBadPackaging   = "Unknown packaging type"
)

// --- 奶酪类别 ---

type cheeseTypeCreate struct {
	Name string `json:"name" binding:"required"`
}

// listCheeseTypes 返回全部奶酪类别。
func (h *Handler) listCheeseTypes(c *gin.Context) {
	list, err := services.NewCheeseTypeService(h.session(c)).List(c)
	if err != nil {
		internalError(c, err, "list cheese types")
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, cheeseTypeJSON(&list[i]))
	}
	c.JSON(200, out)
}

// createCheeseType 先按名称检查唯一性再写入；并发插入由唯一约束兜底，返回相同的 400。
func (h *Handler) createCheeseType(c *gin.Context) {
	var req cheeseTypeCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, 422, "Invalid request body: "+err.Error())
		return
	}
	svc := services.NewCheeseTypeService(h.session(c))
	_, found, err := svc.FindByName(c, req.Name)
	if err != nil {
		internalError(c, err, "find cheese type by name")
		return
	}
	if found {
		reject(c, "cheese_type", "duplicate", 400, msgTypeNameTaken)
		return
	}
	ct, err := svc.Create(c, req.Name)
	if errors.Is(err, services.ErrDuplicate) {
		reject(c, "cheese_type", "duplicate", 400, msgTypeNameTaken)
		return
	}
	if err != nil {
		internalError(c, err, "create cheese type")
		return
	}
	metrics.EntriesCreated.WithLabelValues("cheese_type").Inc()
	h.audit(c, services.EventCheeseTypeCreated, ct.ID, fmt.Sprintf("cheese type %q created", ct.Name))
	c.JSON(200, cheeseTypeJSON(ct))
}

// --- 奶酪条目 ---

// cheeseCreate 绑定时只要求 title：缺少 title 或 JSON 非法返回 422；
// packaging_type 与 cheese_type_id 缺省时按零值继续校验，分别得到
// 400 "Unknown packaging type" 与 400 "Cheese type not found"。
type cheeseCreate struct {
	Title         string `json:"title" binding:"required"`
	CheeseTypeID  uint64 `json:"cheese_type_id"`
	PackagingType string `json:"packaging_type"`
}

// listCheese 支持可选查询参数 packaging_type 与 cheese_type（类别名称），两者同时给出时取交集。
func (h *Handler) listCheese(c *gin.Context) {
	var f services.CheeseFilter
	if v, ok := c.GetQuery("packaging_type"); ok {
		pt, err := storage.ParsePackagingType(v)
		if err != nil {
			detail(c, 400, msgBadPackaging)
			return
		}
		f.PackagingType = &pt
	}
	if v, ok := c.GetQuery("cheese_type"); ok {
		f.CheeseTypeName = &v
	}
	list, err := services.NewCheeseService(h.session(c)).List(c, f)
	if err != nil {
		internalError(c, err, "list cheese")
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, cheeseJSON(&list[i]))
	}
	c.JSON(200, out)
}

func (h *Handler) getCheese(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, 422, "Cheese id must be a positive integer")
		return
	}
	ch, found, err := services.NewCheeseService(h.session(c)).FindByID(c, id)
	if err != nil {
		internalError(c, err, "find cheese by id")
		return
	}
	if !found {
		detail(c, 404, msgCheeseNotFound)
		return
	}
	c.JSON(200, cheeseJSON(ch))
}

// createCheese 依次校验：标题唯一 → 包装类型合法 → 类别存在，然后写入。
// 标题重复时无论其它字段取值如何都返回标题冲突。
func (h *Handler) createCheese(c *gin.Context) {
	var req cheeseCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, 422, "Invalid request body: "+err.Error())
		return
	}
	sess := h.session(c)
	cheese := services.NewCheeseService(sess)
	if _, found, err := cheese.FindByTitle(c, req.Title); err != nil {
		internalError(c, err, "find cheese by title")
		return
	} else if found {
		reject(c, "cheese", "duplicate", 400, msgTitleTaken)
		return
	}
	pt, err := storage.ParsePackagingType(req.PackagingType)
	if err != nil {
		reject(c, "cheese", "packaging_type", 400, msgBadPackaging)
		return
	}
	if _, found, err := services.NewCheeseTypeService(sess).FindByID(c, req.CheeseTypeID); err != nil {
		internalError(c, err, "find cheese type by id")
		return
	} else if !found {
		reject(c, "cheese", "missing_cheese_type", 400, msgTypeNotFound)
		return
	}
	ch, err := cheese.Create(c, services.CheeseCreate{Title: req.Title, CheeseTypeID: req.CheeseTypeID, PackagingType: pt})
	switch {
	case errors.Is(err, services.ErrDuplicate):
		reject(c, "cheese", "duplicate", 400, msgTitleTaken)
		return
	case errors.Is(err, services.ErrMissingCheeseType):
		reject(c, "cheese", "missing_cheese_type", 400, msgTypeNotFound)
		return
	case err != nil:
		internalError(c, err, "create cheese")
		return
	}
	metrics.EntriesCreated.WithLabelValues("cheese").Inc()
	h.audit(c, services.EventCheeseCreated, ch.ID, fmt.Sprintf("cheese %q created", ch.Title))
	c.JSON(200, cheeseJSON(ch))
}
