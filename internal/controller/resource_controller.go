package controller

import (
	"campus_connect_backend/internal/model"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/service"
	"campus_connect_backend/internal/util"
	"campus_connect_backend/pkg/logger"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ResourceController struct {
	ResourceService       *service.ResourceService
	EngagementService     *service.EngagementService
	RatingService         *service.RatingService
	RecommendationService *service.RecommendationService
	StorageService        *service.StorageService
}

func NewResourceController(
	resourceService *service.ResourceService,
	engagementService *service.EngagementService,
	ratingService *service.RatingService,
	recommendationService *service.RecommendationService,
	storageService *service.StorageService,
) *ResourceController {
	return &ResourceController{
		ResourceService:       resourceService,
		EngagementService:     engagementService,
		RatingService:         ratingService,
		RecommendationService: recommendationService,
		StorageService:        storageService,
	}
}

// UpdateResourceRequest 资源更新请求，缺省字段不修改
// swagger:model UpdateResourceRequest
type UpdateResourceRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Tags         *string `json:"tags"`
	Subject      *string `json:"subject"`
	GradeLevel   *string `json:"gradeLevel"`
	ResourceType *string `json:"resourceType"`
	ImageURL     *string `json:"imageUrl"`
}

// RateRequest 评分请求
// swagger:model RateRequest
type RateRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// List godoc
// @Summary 资源列表
// @Description 按学科/年级/类型/关键字筛选，按创建时间倒序分页
// @Tags 资源
// @Produce json
// @Param subject query string false "学科"
// @Param gradeLevel query string false "年级"
// @Param resourceType query string false "资源类型"
// @Param search query string false "标题或描述关键字"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	page, limit := util.Pagination(ctx, 12)
	filter := repository.ResourceFilter{
		Subject:      ctx.Query("subject"),
		GradeLevel:   ctx.Query("gradeLevel"),
		ResourceType: ctx.Query("resourceType"),
		Search:       ctx.Query("search"),
	}

	resources, total, err := c.ResourceService.List(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.NewPageResponse(resources, total, page, limit))
}

// Get godoc
// @Summary 资源详情
// @Description 已登录用户访问他人资源时记录一次浏览
// @Tags 资源
// @Produce json
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 404 {object} util.Response
// @Router /api/resources/{id} [get]
func (c *ResourceController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	resource, err := c.ResourceService.Get(id)
	if err != nil {
		if errors.Is(err, util.ErrResourceNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// 浏览记录失败不影响详情返回
	if user := util.GetUserFromContext(ctx); user != nil {
		if err := c.EngagementService.RecordView(user.UserID, id); err != nil {
			logger.Log.Warn("record view failed", zap.Uint("resource", id), zap.Error(err))
		} else {
			resource, _ = c.ResourceService.Get(id)
		}
	}

	util.Success(ctx, resource)
}

// Create godoc
// @Summary 上传资源
// @Description 以multipart形式上传文件及元数据，视频文件自动探测时长和格式，描述中@用户名会通知被提及者
// @Tags 资源
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "资源文件"
// @Param image formData file false "封面图"
// @Param title formData string true "标题"
// @Param subject formData string true "学科"
// @Param gradeLevel formData string true "年级"
// @Param resourceType formData string true "资源类型" Enums(notes, assignment, textbook, video, document, other)
// @Param description formData string false "描述"
// @Param tags formData string false "逗号分隔标签"
// @Success 201 {object} util.Response{data=model.Resource}
// @Failure 400 {object} util.Response
// @Router /api/resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "resource file is required")
		return
	}
	if fileHeader.Size > util.MaxUploadSizeBytes {
		util.BadRequest(ctx, "file exceeds maximum upload size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, util.AllowedUploadMimeTypes)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("resources/%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))
	fileURL, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	resource := &model.Resource{
		Title:        ctx.PostForm("title"),
		Description:  ctx.PostForm("description"),
		Tags:         ctx.PostForm("tags"),
		Subject:      ctx.PostForm("subject"),
		GradeLevel:   ctx.PostForm("gradeLevel"),
		ResourceType: model.ResourceType(ctx.PostForm("resourceType")),
		FileURL:      fileURL,
		UploaderID:   user.UserID,
		Size:         fileHeader.Size,
	}

	if imageHeader, err := ctx.FormFile("image"); err == nil {
		if url, err := c.uploadImage(ctx, imageHeader); err == nil {
			resource.ImageURL = url
		}
	}

	if resource.ResourceType == model.Video && util.IsVideoExtension(fileHeader.Filename) {
		if info := c.StorageService.ProbeVideo(filename); info != nil {
			resource.Duration = info.Duration
			resource.Format = info.Format
		}
		if resource.ImageURL == "" {
			if url, err := c.StorageService.GenerateVideoThumbnail(filename); err == nil {
				resource.ImageURL = url
			} else {
				logger.Log.Warn("thumbnail generation failed", zap.String("file", filename), zap.Error(err))
			}
		}
	}

	if err := c.ResourceService.Create(resource); err != nil {
		switch {
		case errors.Is(err, util.ErrMissingResourceFields), errors.Is(err, util.ErrInvalidResourceType):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, resource)
}

// Update godoc
// @Summary 更新资源元数据
// @Description 仅上传者可改，文件和计数器字段不可变
// @Tags 资源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Param body body UpdateResourceRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Resource}
// @Failure 403 {object} util.Response
// @Router /api/resources/{id} [put]
func (c *ResourceController) Update(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.GradeLevel != nil {
		updates["grade_level"] = *req.GradeLevel
	}
	if req.ResourceType != nil {
		updates["resource_type"] = *req.ResourceType
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	id := util.MustParseUint(ctx.Param("id"))
	resource, err := c.ResourceService.Update(id, updates, user.UserID)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, resource)
}

// Delete godoc
// @Summary 删除资源
// @Description 仅上传者或管理员可删，级联清理评分/点赞/收藏/浏览/通知
// @Tags 资源
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/resources/{id} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	if err := c.ResourceService.Delete(id, user.UserID, user.Role); err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// ToggleLike godoc
// @Summary 点赞/取消点赞
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/like [post]
func (c *ResourceController) ToggleLike(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	state, err := c.EngagementService.ToggleLike(user.UserID, id)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"state": state})
}

// ToggleSave godoc
// @Summary 收藏/取消收藏
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/save [post]
func (c *ResourceController) ToggleSave(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	state, err := c.EngagementService.ToggleSave(user.UserID, id)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"state": state})
}

// Rate godoc
// @Summary 评分
// @Description 1-5分，一人一次，评论中@用户名会通知被提及者
// @Tags 互动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Param body body RateRequest true "评分内容"
// @Success 201 {object} util.Response{data=model.Rating}
// @Failure 409 {object} util.Response "已评分"
// @Router /api/resources/{id}/rate [post]
func (c *ResourceController) Rate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	rating, err := c.RatingService.Rate(id, user.UserID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAlreadyRated):
			util.Conflict(ctx, "You have already rated this resource")
		case errors.Is(err, util.ErrInvalidRating):
			util.BadRequest(ctx, err.Error())
		default:
			c.writeResourceError(ctx, err)
		}
		return
	}

	util.Created(ctx, rating)
}

// ListRatings godoc
// @Summary 资源评分列表
// @Tags 互动
// @Produce json
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/ratings [get]
func (c *ResourceController) ListRatings(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	ratings, err := c.RatingService.ListRatings(id)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, ratings)
}

// ListLiked godoc
// @Summary 当前用户点赞过的资源
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/resources/liked [get]
func (c *ResourceController) ListLiked(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.Pagination(ctx, 12)
	resources, total, err := c.EngagementService.ListLiked(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.NewPageResponse(resources, total, page, limit))
}

// ListSaved godoc
// @Summary 当前用户收藏的资源
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/resources/saved [get]
func (c *ResourceController) ListSaved(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.Pagination(ctx, 12)
	resources, total, err := c.EngagementService.ListSaved(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.NewPageResponse(resources, total, page, limit))
}

// ListViews godoc
// @Summary 资源浏览明细
// @Description 谁在什么时候看过，仅上传者或管理员可见
// @Tags 互动
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/resources/{id}/views [get]
func (c *ResourceController) ListViews(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	views, err := c.EngagementService.ListViews(id, user.UserID, user.Role)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// Recommended godoc
// @Summary 个性化推荐
// @Description 基于点赞过的学科和年级推荐，无点赞历史时回退热门榜
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/resources/recommended [get]
func (c *ResourceController) Recommended(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.Pagination(ctx, 12)
	resources, total, err := c.RecommendationService.Recommend(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.NewPageResponse(resources, total, page, limit))
}

// Reconcile godoc
// @Summary 重算资源计数器
// @Description 从源记录重算点赞数/浏览数/平均分，管理员专用
// @Tags 资源
// @Produce json
// @Security BearerAuth
// @Param id path int true "资源ID"
// @Success 200 {object} util.Response
// @Router /api/resources/{id}/reconcile [post]
func (c *ResourceController) Reconcile(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.EngagementService.Reconcile(id); err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	resource, err := c.ResourceService.Get(id)
	if err != nil {
		c.writeResourceError(ctx, err)
		return
	}

	util.Success(ctx, resource)
}

func (c *ResourceController) uploadImage(ctx *gin.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, util.AllowedAvatarMimeTypes)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("images/%s%s", uuid.New().String(), filepath.Ext(header.Filename))
	return c.StorageService.Upload(ctx.Request.Context(), filename, file, header.Size, mimeType)
}

func (c *ResourceController) writeResourceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrResourceNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrInvalidResourceType), errors.Is(err, util.ErrMissingResourceFields):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
