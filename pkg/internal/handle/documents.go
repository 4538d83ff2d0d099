package handle

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yeisme/casefile/pkg/internal/service"
	"github.com/yeisme/casefile/pkg/internal/types"
)

// maxPatchBody 元数据补丁请求体上限.
const maxPatchBody = 1 << 20

// DocumentHandlers 文档相关处理器.
type DocumentHandlers struct {
	svc     *service.Services
	tenants service.TenantLookup
}

// NewDocumentHandlers 创建文档处理器，tenants 用于解析患者所属租户.
func NewDocumentHandlers(svc *service.Services, tenants service.TenantLookup) *DocumentHandlers {
	return &DocumentHandlers{svc: svc, tenants: tenants}
}

// Upload 上传文件并创建文档第 1 版.
//
//	@Summary		上传患者文档
//	@Description	multipart 上传文件与分类信息，存储文件后创建第 1 版文档并记录 document.create 审计事件
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			patientId	path		string	true	"患者 ID"
//	@Param			file		formData	file	true	"文件"
//	@Param			category	formData	string	true	"分类"
//	@Param			domain		formData	string	true	"业务域"
//	@Param			title		formData	string	false	"标题，缺省使用文件名"
//	@Param			tags		formData	string	false	"逗号分隔的标签"
//	@Success		201			{object}	types.DocumentResult
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		403			{object}	types.ErrorResponse
//	@Failure		502			{object}	types.ErrorResponse
//	@Router			/api/v1/patients/{patientId}/documents [post]
func (h *DocumentHandlers) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form types.UploadDocumentForm
		if !bind(c, &form, func(obj any) error { return c.ShouldBindWith(obj, binding.FormMultipart) }) {
			return
		}

		file, fh, ok := formFile(c)
		if !ok {
			return
		}
		defer file.Close()

		doc, err := h.svc.Documents.Upload(c.Request.Context(), actor(c, h.tenants),
			form.CreateInput(c.Param("patientId")), fileUpload(file, fh))
		if err != nil {
			writeError(c, "upload", err)
			return
		}

		c.JSON(http.StatusCreated, types.DocumentResult{Success: true, DocumentID: doc.ID})
	}
}

// List 按条件分页列出患者文档.
//
//	@Summary		列出患者文档
//	@Description	按分类、业务域、状态、文本与上传时间过滤，默认按上传时间倒序
//	@Tags			documents
//	@Produce		json
//	@Param			patientId	path		string	true	"患者 ID"
//	@Param			category	query		string	false	"分类，all/Todos 表示不限"
//	@Param			domain		query		string	false	"业务域"
//	@Param			status		query		string	false	"状态：Ativo / Substituido / Arquivado"
//	@Param			q			query		string	false	"标题的不区分大小写子串匹配"
//	@Param			tags		query		string	false	"逗号分隔，须全部命中"
//	@Param			page		query		int		false	"页码，从 1 开始"
//	@Param			page_size	query		int		false	"每页条数"
//	@Success		200			{object}	types.ListDocumentsResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Router			/api/v1/patients/{patientId}/documents [get]
func (h *DocumentHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q types.ListDocumentsQuery
		if !bind(c, &q, c.ShouldBindQuery) {
			return
		}

		filter, page := q.Filter()

		res, err := h.svc.Documents.List(c.Request.Context(), c.Param("patientId"), filter, page)
		if err != nil {
			writeError(c, "list", err)
			return
		}

		c.JSON(http.StatusOK, types.ListDocumentsResponse{Success: true, ListResult: res})
	}
}

// Details 返回文档详情并记录 document.view.
//
//	@Summary		文档详情
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.DocumentResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id} [get]
func (h *DocumentHandlers) Details() gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := h.svc.Documents.GetDetails(c.Request.Context(), actor(c, h.tenants), c.Param("id"))
		if err != nil {
			writeError(c, "details", err)
			return
		}

		c.JSON(http.StatusOK, types.DocumentResponse{Success: true, Document: view})
	}
}

// UploadVersion 上传新文件作为文档的下一版本.
//
//	@Summary		上传新版本
//	@Description	前序版本置为 Substituido，新版本继承分类、关联与可见性；前序已被替换时返回 409
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"前序版本文档 ID"
//	@Param			file	formData	file	true	"文件"
//	@Param			title	formData	string	false	"新标题，缺省沿用前序版本"
//	@Success		201		{object}	types.DocumentResult
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id}/versions [post]
func (h *DocumentHandlers) UploadVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form types.UploadVersionForm
		if !bind(c, &form, func(obj any) error { return c.ShouldBindWith(obj, binding.FormMultipart) }) {
			return
		}

		file, fh, ok := formFile(c)
		if !ok {
			return
		}
		defer file.Close()

		doc, err := h.svc.Documents.UploadVersion(c.Request.Context(), actor(c, h.tenants),
			c.Param("id"), form.VersionInput(), fileUpload(file, fh))
		if err != nil {
			writeError(c, "upload_version", err)
			return
		}

		c.JSON(http.StatusCreated, types.DocumentResult{Success: true, DocumentID: doc.ID})
	}
}

// Patch 按白名单更新元数据，未出现的字段保持不变，显式 null 清空可空字段.
//
//	@Summary		更新文档元数据
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"文档 ID"
//	@Param			patch	body		service.MetadataPatch	true	"补丁"
//	@Success		200		{object}	types.UpdatedResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id} [patch]
func (h *DocumentHandlers) Patch() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBody))
		if err != nil {
			badRequest(c, err)
			return
		}

		var patch service.MetadataPatch
		if len(body) > 0 {
			if err := sonic.Unmarshal(body, &patch); err != nil {
				badRequest(c, err)
				return
			}
		}

		doc, err := h.svc.Documents.UpdateMetadata(c.Request.Context(), actor(c, h.tenants), c.Param("id"), patch)
		if err != nil {
			writeError(c, "update_metadata", err)
			return
		}

		c.JSON(http.StatusOK, types.UpdatedResponse{Success: true, Document: doc})
	}
}

// Archive 软删除文档.
//
//	@Summary		归档文档
//	@Description	状态置为 Arquivado 并记录删除人与时间，文件内容保留
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.DocumentResult
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id} [delete]
func (h *DocumentHandlers) Archive() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := h.svc.Documents.Archive(c.Request.Context(), actor(c, h.tenants), c.Param("id"))
		if err != nil {
			writeError(c, "archive", err)
			return
		}

		c.JSON(http.StatusOK, types.DocumentResult{Success: true, DocumentID: doc.ID})
	}
}

// Versions 返回文档所在版本链.
//
//	@Summary		版本历史
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"版本链中任一文档 ID"
//	@Success		200	{object}	types.VersionsResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id}/versions [get]
func (h *DocumentHandlers) Versions() gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := h.svc.Documents.GetVersionHistory(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, "version_history", err)
			return
		}

		c.JSON(http.StatusOK, types.VersionsResponse{Success: true, Versions: docs})
	}
}

// Events 返回文档的审计事件.
//
//	@Summary		审计记录
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"文档 ID"
//	@Success		200	{object}	types.EventsResponse
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/api/v1/documents/{id}/events [get]
func (h *DocumentHandlers) Events() gin.HandlerFunc {
	return func(c *gin.Context) {
		trail, err := h.svc.Documents.GetAuditTrail(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, "audit_trail", err)
			return
		}

		c.JSON(http.StatusOK, types.EventsResponse{Success: true, Events: trail})
	}
}

// IssueLink 签发短时有效的预览或下载链接.
//
//	@Summary		签发文件链接
//	@Description	ref 可为文档 ID 或存储路径，能解析到文档时记录 document.view / document.download
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.IssueLinkRequest	true	"链接请求"
//	@Success		200		{object}	types.LinkResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		502		{object}	types.ErrorResponse
//	@Router			/api/v1/documents/links [post]
func (h *DocumentHandlers) IssueLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.IssueLinkRequest
		if !bind(c, &req, c.ShouldBindJSON) {
			return
		}

		url, err := h.svc.Links.Issue(c.Request.Context(), actor(c, h.tenants), req.Ref, service.LinkAction(req.Action))
		if err != nil {
			writeError(c, "issue_link", err)
			return
		}

		c.JSON(http.StatusOK, types.LinkResponse{
			Success:   true,
			URL:       url,
			ExpiresIn: int(h.svc.Links.TTL().Seconds()),
		})
	}
}

func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, errMissingFile)
		return nil, nil, false
	}

	file, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return nil, nil, false
	}

	return file, fh, true
}

func fileUpload(file multipart.File, fh *multipart.FileHeader) service.FileUpload {
	return service.FileUpload{
		Reader:      file,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}
}
