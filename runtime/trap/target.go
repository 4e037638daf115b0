package trap

import (
	"github.com/viant/sched/runtime/proc"
	"github.com/viant/sched/runtime/trap/mfa"
)

// ParseTarget parses a module:function/arity[@schedClass] specification.
func ParseTarget(spec string) (proc.Target, error) {
	return mfa.Parse([]byte(spec))
}
