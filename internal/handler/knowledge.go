package handler

import (
	"net/http"
	"strings"

	"knowledge-hub/internal/middleware"
	"knowledge-hub/internal/models"
	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	feedLimit   = 50
	searchLimit = 20
)

// KnowledgeHandler serves the knowledge feed.
type KnowledgeHandler struct {
	items repository.KnowledgeRepository
}

func NewKnowledgeHandler(items repository.KnowledgeRepository) *KnowledgeHandler {
	return &KnowledgeHandler{items: items}
}

type authorView struct {
	Email string `json:"email"`
}

type itemView struct {
	models.KnowledgeItem
	Author authorView `json:"author"`
}

func toItemViews(items []models.KnowledgeItem) []itemView {
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, itemView{KnowledgeItem: it, Author: authorView{Email: it.Author.Email}})
	}
	return views
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	items, err := h.items.Latest(c.Request.Context(), feedLimit)
	if err != nil {
		internalError(c, "list_knowledge", err)
		return
	}
	util.Success(c, util.Response{"items": toItemViews(items)})
}

type createItemReq struct {
	Title   string        `json:"title" binding:"required,max=200"`
	Summary string        `json:"summary" binding:"required,max=1000"`
	Content *string       `json:"content"`
	Tags    []string      `json:"tags" binding:"max=50,dive,max=64"`
	Impact  models.Impact `json:"impact" binding:"required,oneof=LOW MEDIUM HIGH"`
}

func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req createItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.MsgInvalidBody)
		return
	}

	title := strings.TrimSpace(req.Title)
	summary := strings.TrimSpace(req.Summary)
	if title == "" || summary == "" {
		util.Error(c, http.StatusBadRequest, "title and summary must not be blank")
		return
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	item := &models.KnowledgeItem{
		Title:    title,
		Summary:  summary,
		Content:  req.Content,
		Tags:     tags,
		Impact:   req.Impact,
		AuthorID: middleware.Identity(c).ID,
	}
	if err := h.items.Create(c.Request.Context(), item); err != nil {
		internalError(c, "create_knowledge", err)
		return
	}
	util.Created(c, util.Response{"item": item})
}

// Search returns an empty list for a blank query.
func (h *KnowledgeHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.Success(c, util.Response{"items": []itemView{}})
		return
	}

	items, err := h.items.Search(c.Request.Context(), q, searchLimit)
	if err != nil {
		internalError(c, "search_knowledge", err)
		return
	}
	util.Success(c, util.Response{"items": toItemViews(items)})
}
