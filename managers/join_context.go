package managers

import "github.com/bawdo/ksqltree/nodes"

// JoinContext is returned by QueryManager.Join() so the ON condition can
// be supplied inline. Skipping On leaves the join without criteria.
type JoinContext struct {
	manager *QueryManager
	join    *pendingJoin
}

// On sets the join condition and returns the QueryManager for
// continued method chaining.
func (jc *JoinContext) On(condition nodes.Expression) *QueryManager {
	jc.join.on = condition
	return jc.manager
}
