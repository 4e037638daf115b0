// Package mfa parses module:function/arity specifications used to name
// trap continuation targets in configuration files, with an optional
// @dirty_cpu or @dirty_io scheduler-class suffix.
package mfa

import (
	"fmt"
	"strconv"

	"github.com/viant/parsly"
	"github.com/viant/sched/runtime/proc"
)

// Parse parses a target in the format: module:function/arity[@schedClass]
func Parse(input []byte) (proc.Target, error) {
	cursor := parsly.NewCursor("", input, 0)
	var target proc.Target

	// Match the module atom
	matched := cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return target, cursor.NewError(identifierToken)
	}
	target.Module = matched.Text(cursor)

	matched = cursor.MatchOne(colonToken)
	if matched.Code != colonToken.Code {
		return target, cursor.NewError(colonToken)
	}

	// Match the function atom
	matched = cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return target, cursor.NewError(identifierToken)
	}
	target.Function = matched.Text(cursor)

	matched = cursor.MatchOne(slashToken)
	if matched.Code != slashToken.Code {
		return target, cursor.NewError(slashToken)
	}

	// Match the arity
	matched = cursor.MatchOne(arityToken)
	if matched.Code != arityToken.Code {
		return target, cursor.NewError(arityToken)
	}
	arity, err := strconv.ParseUint(matched.Text(cursor), 10, 32)
	if err != nil {
		return target, err
	}
	target.Arity = uint32(arity)

	// Optional scheduler class suffix
	matched = cursor.MatchOne(atToken)
	if matched.Code != atToken.Code {
		if cursor.Pos < cursor.InputSize {
			return target, fmt.Errorf("unexpected trailing input at %d in %q", cursor.Pos, input)
		}
		return target, nil
	}

	matched = cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return target, cursor.NewError(identifierToken)
	}
	switch class := matched.Text(cursor); class {
	case "dirty_cpu":
		target.Sched = proc.SchedDirtyCPU
	case "dirty_io":
		target.Sched = proc.SchedDirtyIO
	case "normal":
		target.Sched = proc.SchedNormal
	default:
		return target, fmt.Errorf("unknown scheduler class %q", class)
	}
	if cursor.Pos < cursor.InputSize {
		return target, fmt.Errorf("unexpected trailing input at %d in %q", cursor.Pos, input)
	}
	return target, nil
}
