package controller

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LegalController struct {
	LegalService *service.LegalService
}

func NewLegalController(legalService *service.LegalService) *LegalController {
	return &LegalController{LegalService: legalService}
}

// GetDocument godoc
// @Summary 法律文档
// @Description 服务条款或隐私政策，未配置时返回默认内容
// @Tags 法律
// @Produce json
// @Param doc path string true "terms_of_service 或 privacy_policy"
// @Success 200 {object} util.Response{data=model.LegalDocument}
// @Failure 404 {object} util.Response
// @Router /api/legal/{doc} [get]
func (c *LegalController) GetDocument(ctx *gin.Context) {
	doc, ok := c.LegalService.GetDocument(ctx.Request.Context(), ctx.Param("doc"))
	if !ok {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, doc)
}

// swagger:model LegalDocumentRequest
type LegalDocumentRequest struct {
	Title    string               `json:"title" binding:"required"`
	Sections []model.LegalSection `json:"sections" binding:"required"`
}

// UpdateDocument godoc
// @Summary 更新法律文档
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param doc path string true "terms_of_service 或 privacy_policy"
// @Param body body LegalDocumentRequest true "文档内容"
// @Success 200 {object} util.Response{data=model.LegalDocument}
// @Failure 400 {object} util.Response
// @Router /api/admin/legal/{doc} [put]
func (c *LegalController) UpdateDocument(ctx *gin.Context) {
	id := ctx.Param("doc")
	if id != model.LegalTermsOfService && id != model.LegalPrivacyPolicy {
		util.NotFound(ctx)
		return
	}

	var req LegalDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc := &model.LegalDocument{ID: id, Title: req.Title, Sections: req.Sections}
	if err := c.LegalService.SaveDocument(ctx.Request.Context(), doc); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, doc)
}
