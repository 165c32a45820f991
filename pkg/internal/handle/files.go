package handle

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/internal/service"
	"github.com/yeisme/flarecloud/pkg/internal/types"
)

// UploadFormField multipart 表单中承载文件的字段名.
const UploadFormField = "file"

// UploadFile 处理单文件上传.
//
//	@Summary		上传文件
//	@Description	multipart/form-data 上传，字段名为 file；服务端分配唯一文件名，原始文件名只出现在响应中
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file					true	"上传的文件"
//	@Success		200		{object}	types.UploadResponse	"上传成功"
//	@Failure		400		{object}	types.ErrorResponse		"没有文件"
//	@Failure		413		{object}	types.ErrorResponse		"超过上传大小限制"
//	@Failure		500		{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/upload [post]
func UploadFile(c *gin.Context) {
	l := requestLogger(c)

	fh, err := c.FormFile(UploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, err, types.MsgUploadFailed)
			return
		}

		l.Debug().Err(err).Msg("upload without file")
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: types.MsgNoFile})

		return
	}

	src, err := fh.Open()
	if err != nil {
		l.Error().Err(err).Msg("open multipart file failed")
		abortWithError(c, err, types.MsgUploadFailed)

		return
	}
	defer src.Close()

	meta := service.UploadMeta{
		FieldName:    UploadFormField,
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
	}

	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Upload(c.Request.Context(), src, meta)
	if err != nil {
		l.Error().Err(err).Str("original_name", fh.Filename).Msg("failed to store upload")
		abortWithError(c, err, types.MsgUploadFailed)

		return
	}

	c.JSON(http.StatusOK, types.UploadResponse{
		Message: types.MsgUploaded,
		File: types.UploadedFile{
			FieldName:    meta.FieldName,
			OriginalName: meta.OriginalName,
			MimeType:     meta.MimeType,
			FileName:     info.Name,
			Size:         info.Size,
		},
	})
}

// ListFiles 列出存储目录中的所有文件名.
//
//	@Summary		文件列表
//	@Tags			文件
//	@Produce		json
//	@Success		200	{array}		string				"文件名列表"
//	@Failure		500	{object}	types.ErrorResponse	"无法读取存储目录"
//	@Router			/files [get]
func ListFiles(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	names, err := svc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err, types.MsgUnableToList)
		return
	}

	c.JSON(http.StatusOK, names)
}

// DownloadFile 以附件形式返回文件内容，支持 Range 与条件请求.
//
//	@Summary		下载文件
//	@Tags			文件
//	@Produce		application/octet-stream
//	@Param			filename	path		string				true	"文件名"
//	@Success		200			{file}		file				"文件内容"
//	@Failure		400			{object}	types.ErrorResponse	"非法文件名"
//	@Failure		404			{object}	types.ErrorResponse	"文件不存在"
//	@Router			/files/{filename} [get]
func DownloadFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	f, info, err := svc.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		abortWithError(c, err, types.MsgDownloadFailed)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}))
	http.ServeContent(c.Writer, c.Request, info.Name, info.ModifiedAt, f)
}

// FileDetails 返回文件元数据.
//
//	@Summary		文件详情
//	@Tags			文件
//	@Produce		json
//	@Param			filename	path		string						true	"文件名"
//	@Success		200			{object}	types.FileDetailsResponse	"文件详情"
//	@Failure		400			{object}	types.ErrorResponse			"非法文件名"
//	@Failure		404			{object}	types.ErrorResponse			"文件不存在"
//	@Router			/files/{filename}/details [get]
func FileDetails(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	info, err := svc.Details(c.Request.Context(), c.Param("filename"))
	if err != nil {
		abortWithError(c, err, types.MsgDetailsFailed)
		return
	}

	c.JSON(http.StatusOK, types.FileDetailsResponse{
		FileName:   info.Name,
		Size:       info.Size,
		CreatedAt:  info.CreatedAt,
		ModifiedAt: info.ModifiedAt,
	})
}

// DeleteFile 删除文件.
//
//	@Summary		删除文件
//	@Tags			文件
//	@Produce		json
//	@Param			filename	path		string					true	"文件名"
//	@Success		200			{object}	types.MessageResponse	"删除成功"
//	@Failure		400			{object}	types.ErrorResponse		"非法文件名"
//	@Failure		404			{object}	types.ErrorResponse		"文件不存在"
//	@Router			/files/{filename} [delete]
func DeleteFile(c *gin.Context) {
	svc := service.NewFileService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		abortWithError(c, err, types.MsgDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: types.MsgDeleted})
}
