package world

import "github.com/ceyewan/genesis/xerrors"

// 错误分类：HTTP 层据此映射状态码（NotFound→404，BadRequest→400）。
// 单次请求内的失败不重试、不回滚，与各镜像的尽力而为扇出语义一致。
var (
	ErrRoomNotFound         = xerrors.New("session not found")
	ErrPlayerNotFound       = xerrors.New("player not found")
	ErrMessageNotFound      = xerrors.New("message not found")
	ErrMediaNotFound        = xerrors.New("media reference not found")
	ErrFeedItemNotFound     = xerrors.New("feed item not found")
	ErrInsufficientQuantity = xerrors.New("insufficient item quantity")
	ErrPayloadTooLarge      = xerrors.New("media payload exceeds size limit")
	ErrBadRequest           = xerrors.New("bad request")
)
