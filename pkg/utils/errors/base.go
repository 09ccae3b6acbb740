package errors

import "net/http"

// Service codes (AA)
const (
	// ServiceCommon is for common/base errors shared by all services.
	ServiceCommon = 0

	// ServiceAdminCenter is for the admin-center service.
	ServiceAdminCenter = 2

	// ServiceInfraDB is for database infrastructure.
	ServiceInfraDB = 10
)

// Category codes (BB)
const (
	CategoryRequest  = 1
	CategoryAuthn    = 2
	CategoryAuthz    = 3
	CategoryResource = 4
	CategoryConflict = 5
	CategoryInternal = 7
	CategoryDatabase = 8
	CategoryConfig   = 12
)

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Bad request",
		MessageZH: "请求错误",
	}

	// ErrUnauthorized indicates a missing or invalid identity.
	ErrUnauthorized = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuthn, 0),
		HTTP:      http.StatusUnauthorized,
		MessageEN: "Unauthorized",
		MessageZH: "未认证",
	}

	// ErrNoPermission indicates the subject failed an authorization gate.
	ErrNoPermission = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryAuthz, 0),
		HTTP:      http.StatusForbidden,
		MessageEN: "No permission",
		MessageZH: "没有权限",
	}

	// ErrNotFound indicates a missing resource.
	ErrNotFound = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryResource, 0),
		HTTP:      http.StatusNotFound,
		MessageEN: "Resource not found",
		MessageZH: "资源不存在",
	}

	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP:      http.StatusConflict,
		MessageEN: "Resource already exists",
		MessageZH: "资源已存在",
	}

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Internal server error",
		MessageZH: "内部服务器错误",
	}

	// ErrDatabase indicates a storage-layer failure, including policy store
	// failures surfaced by the casbin enforcer.
	ErrDatabase = &Errno{
		Code:      MakeCode(ServiceInfraDB, CategoryDatabase, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Database error",
		MessageZH: "数据库错误",
	}

	// ErrConfiguration indicates an invalid construction-time configuration.
	ErrConfiguration = &Errno{
		Code:      MakeCode(ServiceCommon, CategoryConfig, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Invalid configuration",
		MessageZH: "配置无效",
	}
)
