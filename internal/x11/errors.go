package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// ErrorInfo is the decoded form of an X protocol error.
type ErrorInfo struct {
	Code        int
	Name        string
	MajorOpcode int
	MinorOpcode int
	ResourceID  uint32
	Sequence    uint16
}

// Request returns the name of the request that failed.
func (e ErrorInfo) Request() string {
	return RequestName(e.MajorOpcode)
}

func (e ErrorInfo) String() string {
	return fmt.Sprintf("request %d (%s), error %d (%s), resource 0x%x",
		e.MajorOpcode, e.Request(), e.Code, e.Name, e.ResourceID)
}

// DescribeError decodes a core protocol error. Errors from extensions keep
// only the sequence number and resource id that xgb.Error exposes.
func DescribeError(err xgb.Error) ErrorInfo {
	switch e := err.(type) {
	case xproto.RequestError:
		return requestInfo(1, "BadRequest", e)
	case xproto.ValueError:
		return valueInfo(2, "BadValue", e)
	case xproto.WindowError:
		return valueInfo(3, "BadWindow", xproto.ValueError(e))
	case xproto.PixmapError:
		return valueInfo(4, "BadPixmap", xproto.ValueError(e))
	case xproto.AtomError:
		return valueInfo(5, "BadAtom", xproto.ValueError(e))
	case xproto.CursorError:
		return valueInfo(6, "BadCursor", xproto.ValueError(e))
	case xproto.FontError:
		return valueInfo(7, "BadFont", xproto.ValueError(e))
	case xproto.MatchError:
		return requestInfo(8, "BadMatch", xproto.RequestError(e))
	case xproto.DrawableError:
		return valueInfo(9, "BadDrawable", xproto.ValueError(e))
	case xproto.AccessError:
		return requestInfo(10, "BadAccess", xproto.RequestError(e))
	case xproto.AllocError:
		return requestInfo(11, "BadAlloc", xproto.RequestError(e))
	case xproto.ColormapError:
		return valueInfo(12, "BadColor", xproto.ValueError(e))
	case xproto.GContextError:
		return valueInfo(13, "BadGC", xproto.ValueError(e))
	case xproto.IDChoiceError:
		return valueInfo(14, "BadIDChoice", xproto.ValueError(e))
	case xproto.NameError:
		return requestInfo(15, "BadName", xproto.RequestError(e))
	case xproto.LengthError:
		return requestInfo(16, "BadLength", xproto.RequestError(e))
	case xproto.ImplementationError:
		return requestInfo(17, "BadImplementation", xproto.RequestError(e))
	}
	return ErrorInfo{Name: err.Error(), ResourceID: err.BadId(), Sequence: err.SequenceId()}
}

func requestInfo(code int, name string, e xproto.RequestError) ErrorInfo {
	return ErrorInfo{
		Code:        code,
		Name:        name,
		MajorOpcode: int(e.MajorOpcode),
		MinorOpcode: int(e.MinorOpcode),
		ResourceID:  e.BadValue,
		Sequence:    e.Sequence,
	}
}

func valueInfo(code int, name string, e xproto.ValueError) ErrorInfo {
	return ErrorInfo{
		Code:        code,
		Name:        name,
		MajorOpcode: int(e.MajorOpcode),
		MinorOpcode: int(e.MinorOpcode),
		ResourceID:  e.BadValue,
		Sequence:    e.Sequence,
	}
}

// ErrorText returns the conventional name for a core error code.
func ErrorText(code int) string {
	if name, ok := errorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("error %d", code)
}

var errorNames = map[int]string{
	1:  "BadRequest",
	2:  "BadValue",
	3:  "BadWindow",
	4:  "BadPixmap",
	5:  "BadAtom",
	6:  "BadCursor",
	7:  "BadFont",
	8:  "BadMatch",
	9:  "BadDrawable",
	10: "BadAccess",
	11: "BadAlloc",
	12: "BadColor",
	13: "BadGC",
	14: "BadIDChoice",
	15: "BadName",
	16: "BadLength",
	17: "BadImplementation",
}

// RequestName returns the core protocol request name for a major opcode.
func RequestName(opcode int) string {
	if name, ok := requestNames[opcode]; ok {
		return name
	}
	return "Unknown"
}

// Core requests issued by the window manager and its collaborators.
var requestNames = map[int]string{
	1:   "CreateWindow",
	2:   "ChangeWindowAttributes",
	3:   "GetWindowAttributes",
	4:   "DestroyWindow",
	6:   "ChangeSaveSet",
	7:   "ReparentWindow",
	8:   "MapWindow",
	10:  "UnmapWindow",
	12:  "ConfigureWindow",
	14:  "GetGeometry",
	15:  "QueryTree",
	16:  "InternAtom",
	18:  "ChangeProperty",
	20:  "GetProperty",
	25:  "SendEvent",
	28:  "GrabButton",
	29:  "UngrabButton",
	33:  "GrabKey",
	34:  "UngrabKey",
	36:  "GrabServer",
	37:  "UngrabServer",
	38:  "QueryPointer",
	42:  "SetInputFocus",
	53:  "CreatePixmap",
	55:  "CreateGC",
	60:  "FreeGC",
	62:  "CopyArea",
	72:  "PutImage",
	101: "GetKeyboardMapping",
	113: "KillClient",
	119: "GetModifierMapping",
}
