package code

var (
	Success       = NewSuss(1, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessReset  = NewSuss(5, lang{en: "Reset to defaults", zh_cn: "已恢复默认"})

	Failed              = NewError(400, lang{en: "Operation failed", zh_cn: "操作失败"})
	ErrorServerInternal = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams  = NewError(501, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI    = NewError(503, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorDBQuery        = NewError(505, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorWriteQueueFull = NewError(506, lang{en: "Too many pending writes, try again later", zh_cn: "写入队列已满，请稍后再试"})
	ErrorWriteTimeout   = NewError(507, lang{en: "Write operation timed out", zh_cn: "写入操作超时"})
	ErrorConfig         = NewError(508, lang{en: "Configuration error", zh_cn: "配置错误"})

	// Menus
	// 菜单
	ErrorMenuNotFound    = NewError(1001, lang{en: "Menu not found", zh_cn: "菜单不存在"})
	ErrorMenuExists      = NewError(1002, lang{en: "The machine-readable name is already in use", zh_cn: "菜单机器名已被使用"})
	ErrorMenuNameInvalid = NewError(1003, lang{en: "Menu name must contain only lowercase letters, numbers, hyphens and underscores, and be at most 32 characters", zh_cn: "菜单机器名只能包含小写字母、数字、连字符和下划线，且不超过 32 个字符"})
	ErrorMenuLocked      = NewError(1004, lang{en: "This menu is provided by the system and cannot be deleted", zh_cn: "系统菜单不能删除"})
	ErrorMenuLabelEmpty  = NewError(1005, lang{en: "Menu title is required", zh_cn: "菜单标题不能为空"})

	// Links
	// 菜单链接
	ErrorLinkNotFound             = NewError(1101, lang{en: "Menu link not found", zh_cn: "菜单链接不存在"})
	ErrorParentNotFound           = NewError(1102, lang{en: "Parent link not found", zh_cn: "父级链接不存在"})
	ErrorCycleDetected            = NewError(1103, lang{en: "A link cannot be placed below itself or one of its descendants", zh_cn: "链接不能移动到自身或其子孙链接之下"})
	ErrorDepthExceeded            = NewError(1104, lang{en: "The menu link would exceed the maximum menu depth", zh_cn: "菜单链接超过了最大层级深度"})
	ErrorPendingRevisionLocked    = NewError(1105, lang{en: "This link has a pending revision; its position cannot be changed until it is published", zh_cn: "链接存在待发布修订，发布前不能调整位置"})
	ErrorPendingRevisionParent    = NewError(1106, lang{en: "A link with a pending revision cannot be used as a parent", zh_cn: "存在待发布修订的链接不能作为父级"})
	ErrorCannotDeleteProtected    = NewError(1107, lang{en: "Links provided by modules cannot be deleted, only reset", zh_cn: "模块提供的链接不能删除，只能重置"})
	ErrorProtectedField           = NewError(1108, lang{en: "This attribute of a module-provided link cannot be changed", zh_cn: "模块提供的链接不能修改该属性"})
	ErrorIdCollision              = NewError(1109, lang{en: "A declared link id collides with an existing custom link", zh_cn: "声明的链接 ID 与已有自定义链接冲突"})
	ErrorInvalidDeclaration       = NewError(1110, lang{en: "Invalid menu link declaration", zh_cn: "无效的菜单链接声明"})
	ErrorInvalidTarget            = NewError(1111, lang{en: "Either the path is invalid or you do not have access to it", zh_cn: "链接路径无效"})
	ErrorTargetInaccessible       = NewError(1112, lang{en: "The path is inaccessible", zh_cn: "该路径不可访问"})
	ErrorCrossMenuParentMismatch  = NewError(1113, lang{en: "The parent link belongs to a different menu", zh_cn: "父级链接属于其他菜单"})
	ErrorNotResettable            = NewError(1114, lang{en: "Only module-provided links can be reset", zh_cn: "只有模块提供的链接可以重置"})
	ErrorRevisionStateUnsupported = NewError(1115, lang{en: "Only custom links carry revisions", zh_cn: "只有自定义链接存在修订"})
)
