// Package docs 注册 FlareCloud 的 OpenAPI 文档，供 /swagger 路由读取.
// 与 pkg/internal/handle 中的 swag 注释保持一致.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/license/mit/"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/upload": {
            "post": {
                "description": "multipart/form-data 上传，字段名为 file；服务端分配唯一文件名，原始文件名只出现在响应中",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "上传文件",
                "parameters": [
                    {"type": "file", "description": "上传的文件", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "上传成功", "schema": {"$ref": "#/definitions/types.UploadResponse"}},
                    "400": {"description": "没有文件", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "超过上传大小限制", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "服务器内部错误", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/files": {
            "get": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "文件列表",
                "responses": {
                    "200": {"description": "文件名列表", "schema": {"type": "array", "items": {"type": "string"}}},
                    "500": {"description": "无法读取存储目录", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/files/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["文件"],
                "summary": "下载文件",
                "parameters": [
                    {"type": "string", "description": "文件名", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "文件内容", "schema": {"type": "file"}},
                    "400": {"description": "非法文件名", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "文件不存在", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "删除文件",
                "parameters": [
                    {"type": "string", "description": "文件名", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "删除成功", "schema": {"$ref": "#/definitions/types.MessageResponse"}},
                    "400": {"description": "非法文件名", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "文件不存在", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/files/{filename}/details": {
            "get": {
                "produces": ["application/json"],
                "tags": ["文件"],
                "summary": "文件详情",
                "parameters": [
                    {"type": "string", "description": "文件名", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "文件详情", "schema": {"$ref": "#/definitions/types.FileDetailsResponse"}},
                    "400": {"description": "非法文件名", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "文件不存在", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "types.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "types.FileDetailsResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "size": {"type": "integer"},
                "createdAt": {"type": "string", "format": "date-time"},
                "modifiedAt": {"type": "string", "format": "date-time"}
            }
        },
        "types.UploadedFile": {
            "type": "object",
            "properties": {
                "fieldname": {"type": "string"},
                "originalname": {"type": "string"},
                "mimetype": {"type": "string"},
                "filename": {"type": "string"},
                "size": {"type": "integer"}
            }
        },
        "types.UploadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "file": {"$ref": "#/definitions/types.UploadedFile"}
            }
        }
    }
}`

// SwaggerInfo 文档元信息，Host 和 Version 在注册路由时填充.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FlareCloud API",
	Description:      "FlareCloud 是一个简单的文件存储服务：上传、列表、下载、查看详情、删除，并定期清理过期文件。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
