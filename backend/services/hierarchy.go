package services

import (
	"fmt"
	"sort"
	"sync"

	"esgframe/backend/models"
)

// HierarchyService owns every structural mutation of the variable tree:
// create, move, clone, two-phase delete and activation toggling. Edits
// that touch more than one node run inside a store transaction and are
// serialized per lever root by an in-process mutex, so two concurrent
// moves inside the same forest cannot interleave their path repairs.
type HierarchyService struct {
	store TreeStore
	locks sync.Map // lever id -> *sync.Mutex
}

func NewHierarchyService(store TreeStore) *HierarchyService {
	return &HierarchyService{store: store}
}

type CreateVariableInput struct {
	Name            string
	Description     string
	Weightage       *float64
	ParentID        *uint
	LeverID         *uint
	AggregationType models.AggregationType
	SortOrder       int
}

// CreateVariable adds a node under a lever (root) or a parent variable.
// Exactly one of ParentID/LeverID must be set. A new node has no
// descendants, so level and path come from a single parent read.
func (s *HierarchyService) CreateVariable(in CreateVariableInput) (*models.Variable, error) {
	if (in.ParentID == nil) == (in.LeverID == nil) {
		return nil, ErrInvalidOwnership
	}

	v := &models.Variable{
		Name:            in.Name,
		Description:     in.Description,
		Weightage:       1,
		ParentID:        in.ParentID,
		LeverID:         in.LeverID,
		AggregationType: models.AggregationWeightedAverage,
		SortOrder:       in.SortOrder,
		IsActive:        true,
	}
	if in.Weightage != nil {
		v.Weightage = *in.Weightage
	}
	if in.AggregationType != "" {
		v.AggregationType = in.AggregationType
	}

	if in.ParentID != nil {
		parent, err := s.store.VariableByID(*in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Level+1 > maxTreeDepth {
			return nil, ErrDepthExceeded
		}
		v.Level = parent.Level + 1
		v.Path = parent.Path + PathSeparator + v.Name
	} else {
		if _, err := s.store.LeverByID(*in.LeverID); err != nil {
			return nil, err
		}
		v.Level = 0
		v.Path = v.Name
	}

	if err := s.store.CreateVariable(v); err != nil {
		return nil, err
	}
	return v, nil
}

type UpdateVariableInput struct {
	Name            *string
	Description     *string
	Weightage       *float64
	AggregationType *models.AggregationType
	SortOrder       *int
}

// UpdateVariable edits a variable's own fields. A rename changes the path
// of the whole subtree, so it triggers the same transactional path repair
// as a move.
func (s *HierarchyService) UpdateVariable(id uint, in UpdateVariableInput) (*models.Variable, error) {
	v, err := s.store.VariableByID(id)
	if err != nil {
		return nil, err
	}

	renamed := in.Name != nil && *in.Name != v.Name
	if in.Name != nil {
		v.Name = *in.Name
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.Weightage != nil {
		v.Weightage = *in.Weightage
	}
	if in.AggregationType != nil {
		v.AggregationType = *in.AggregationType
	}
	if in.SortOrder != nil {
		v.SortOrder = *in.SortOrder
	}

	if !renamed {
		if err := s.store.SaveVariable(v); err != nil {
			return nil, err
		}
		return v, nil
	}

	lever, err := s.rootLeverOf(v)
	if err != nil {
		return nil, err
	}
	unlock := s.lockLevers(lever)
	defer unlock()

	parentPath := ""
	parentLevel := -1
	if v.ParentID != nil {
		parent, err := s.store.VariableByID(*v.ParentID)
		if err != nil {
			return nil, err
		}
		parentPath = parent.Path
		parentLevel = parent.Level
	}
	err = s.store.Transaction(func(tx TreeStore) error {
		if err := tx.SaveVariable(v); err != nil {
			return err
		}
		if err := RecomputeSubtree(tx, id, parentPath, parentLevel); err != nil {
			return fmt.Errorf("repair paths after renaming variable %d: %w: %w", id, ErrPartialMutation, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.VariableByID(id)
}

// CanMoveVariable reports whether moving a variable under newParentID would
// keep the tree acyclic: the target must exist and must not be the variable
// itself or any of its descendants.
func (s *HierarchyService) CanMoveVariable(id, newParentID uint) (bool, error) {
	return canMove(s.store, id, newParentID)
}

func canMove(store TreeStore, id, newParentID uint) (bool, error) {
	if _, err := store.VariableByID(id); err != nil {
		return false, err
	}
	if _, err := store.VariableByID(newParentID); err != nil {
		return false, err
	}
	if newParentID == id {
		return false, nil
	}
	desc, err := descendantIDs(store, id)
	if err != nil {
		return false, err
	}
	_, cyclic := desc[newParentID]
	return !cyclic, nil
}

// MoveVariable reparents a variable under a new parent variable or a new
// lever. Setting a parent clears the lever pointer and vice versa; the
// whole subtree gets fresh levels and paths inside one transaction. The
// first reads only establish which levers to lock; cycle and depth checks
// and the parent's path are read again under the lock, so a competing
// rename or move that wins the lock first is fully folded in.
func (s *HierarchyService) MoveVariable(id uint, newParentID, newLeverID *uint) (*models.Variable, error) {
	if (newParentID == nil) == (newLeverID == nil) {
		return nil, ErrInvalidOwnership
	}

	v, err := s.store.VariableByID(id)
	if err != nil {
		return nil, err
	}
	sourceLever, err := s.rootLeverOf(v)
	if err != nil {
		return nil, err
	}
	targetLever := uint(0)
	if newParentID != nil {
		newParent, err := s.store.VariableByID(*newParentID)
		if err != nil {
			return nil, err
		}
		targetLever, err = s.rootLeverOf(newParent)
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := s.store.LeverByID(*newLeverID); err != nil {
			return nil, err
		}
		targetLever = *newLeverID
	}

	unlock := s.lockLevers(sourceLever, targetLever)
	defer unlock()

	err = s.store.Transaction(func(tx TreeStore) error {
		parentPath := ""
		parentLevel := -1
		if newParentID != nil {
			ok, err := canMove(tx, id, *newParentID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("move variable %d under %d: %w", id, *newParentID, ErrCircularReference)
			}
			newParent, err := tx.VariableByID(*newParentID)
			if err != nil {
				return err
			}
			if newParent.Level+1 > maxTreeDepth {
				return ErrDepthExceeded
			}
			parentPath = newParent.Path
			parentLevel = newParent.Level
		}
		fresh, err := tx.VariableByID(id)
		if err != nil {
			return err
		}
		fresh.ParentID = newParentID
		fresh.LeverID = newLeverID
		if err := tx.SaveVariable(fresh); err != nil {
			return err
		}
		if err := RecomputeSubtree(tx, id, parentPath, parentLevel); err != nil {
			return fmt.Errorf("repair paths after moving variable %d: %w: %w", id, ErrPartialMutation, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.VariableByID(id)
}

type CloneInput struct {
	SourceID       uint
	TargetLeverID  *uint
	TargetParentID *uint
}

// CloneVariableTree deep-copies a variable, its descendant subtree and all
// attached questions as new rows under the given target. The root clone's
// name gets a "(Copy)" suffix; levels and paths are computed relative to
// the clone's new position. The whole copy is one transaction, so a failed
// write leaves no orphaned partial subtree behind.
func (s *HierarchyService) CloneVariableTree(in CloneInput) (*models.Variable, error) {
	if (in.TargetParentID == nil) == (in.TargetLeverID == nil) {
		return nil, ErrInvalidOwnership
	}
	source, err := s.store.VariableByID(in.SourceID)
	if err != nil {
		return nil, err
	}
	sourceLever, err := s.rootLeverOf(source)
	if err != nil {
		return nil, err
	}
	targetLever := uint(0)
	if in.TargetParentID != nil {
		target, err := s.store.VariableByID(*in.TargetParentID)
		if err != nil {
			return nil, err
		}
		targetLever, err = s.rootLeverOf(target)
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := s.store.LeverByID(*in.TargetLeverID); err != nil {
			return nil, err
		}
		targetLever = *in.TargetLeverID
	}

	// Both forests are locked before the copy starts: the source so the
	// subtree cannot shift mid-walk, the target so the attachment point's
	// path read inside the transaction stays current.
	unlock := s.lockLevers(sourceLever, targetLever)
	defer unlock()

	type frame struct {
		srcID       uint
		parentID    *uint
		leverID     *uint
		parentPath  string
		parentLevel int
		depth       int
		isRoot      bool
	}

	var rootClone *models.Variable
	err = s.store.Transaction(func(tx TreeStore) error {
		parentPath := ""
		parentLevel := -1
		if in.TargetParentID != nil {
			target, err := tx.VariableByID(*in.TargetParentID)
			if err != nil {
				return err
			}
			parentPath = target.Path
			parentLevel = target.Level
		}
		stack := []frame{{
			srcID:       in.SourceID,
			parentID:    in.TargetParentID,
			leverID:     in.TargetLeverID,
			parentPath:  parentPath,
			parentLevel: parentLevel,
			isRoot:      true,
		}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.depth > maxTreeDepth || f.parentLevel+1 > maxTreeDepth {
				return ErrDepthExceeded
			}

			src, err := tx.VariableByID(f.srcID)
			if err != nil {
				return err
			}
			name := src.Name
			if f.isRoot {
				name += " (Copy)"
			}
			clone := &models.Variable{
				Name:            name,
				Description:     src.Description,
				Weightage:       src.Weightage,
				ParentID:        f.parentID,
				LeverID:         f.leverID,
				Level:           f.parentLevel + 1,
				AggregationType: src.AggregationType,
				SortOrder:       src.SortOrder,
				IsActive:        src.IsActive,
			}
			if f.parentPath == "" {
				clone.Path = clone.Name
			} else {
				clone.Path = f.parentPath + PathSeparator + clone.Name
			}
			if err := tx.CreateVariable(clone); err != nil {
				return err
			}
			if f.isRoot {
				rootClone = clone
			}

			questions, err := tx.QuestionsByVariable(src.ID)
			if err != nil {
				return err
			}
			for _, q := range questions {
				copied := &models.VariableQuestion{
					VariableID:          clone.ID,
					Text:                q.Text,
					Type:                q.Type,
					Options:             q.Options,
					IsRequired:          q.IsRequired,
					Weightage:           q.Weightage,
					SortOrder:           q.SortOrder,
					GroupID:             q.GroupID,
					IsGroupLead:         q.IsGroupLead,
					RequiresEvidence:    q.RequiresEvidence,
					EvidenceDescription: q.EvidenceDescription,
				}
				if err := tx.CreateQuestion(copied); err != nil {
					return err
				}
			}

			children, err := tx.Children(src.ID)
			if err != nil {
				return err
			}
			for _, child := range children {
				cloneID := clone.ID
				stack = append(stack, frame{
					srcID:       child.ID,
					parentID:    &cloneID,
					parentPath:  clone.Path,
					parentLevel: clone.Level,
					depth:       f.depth + 1,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rootClone, nil
}

type QuestionPreview struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type ChildPreview struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// DeletePreview lists everything a forced delete would destroy, so the
// caller can surface it before asking for confirmation.
type DeletePreview struct {
	VariableID      uint              `json:"variable_id"`
	Name            string            `json:"name"`
	Questions       []QuestionPreview `json:"questions"`
	Children        []ChildPreview    `json:"children"`
	AffectedAnswers int64             `json:"affected_answers"`
}

// DeleteVariable implements the two-phase delete. A leaf with no questions
// is hard-deleted immediately. Otherwise, without force the variable is
// deactivated and a preview of the destructive consequences is returned
// alongside ErrDestructiveOperationPending; with force the questions and
// their recorded answers are removed and direct children are reassigned to
// the deleted node's own parent (or lever), keeping the tree connected.
func (s *HierarchyService) DeleteVariable(id uint, force bool) (*DeletePreview, error) {
	v, err := s.store.VariableByID(id)
	if err != nil {
		return nil, err
	}
	lever, err := s.rootLeverOf(v)
	if err != nil {
		return nil, err
	}
	unlock := s.lockLevers(lever)
	defer unlock()

	// Reload under the lock: the node, its questions and its children may
	// all have changed while we waited for a competing structural edit.
	v, err = s.store.VariableByID(id)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.QuestionsByVariable(id)
	if err != nil {
		return nil, err
	}
	children, err := s.store.Children(id)
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 && len(children) == 0 {
		return nil, s.store.DeleteVariable(id)
	}

	preview := &DeletePreview{VariableID: v.ID, Name: v.Name}
	questionIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
		preview.Questions = append(preview.Questions, QuestionPreview{ID: q.ID, Text: q.Text, Type: q.Type})
	}
	for _, child := range children {
		childQs, err := s.store.QuestionsByVariable(child.ID)
		if err != nil {
			return nil, err
		}
		preview.Children = append(preview.Children, ChildPreview{
			ID:            child.ID,
			Name:          child.Name,
			QuestionCount: len(childQs),
		})
	}
	preview.AffectedAnswers, err = s.store.CountAnswersForQuestions(questionIDs)
	if err != nil {
		return nil, err
	}

	if !force {
		err := s.store.Transaction(func(tx TreeStore) error {
			return deactivateSubtree(tx, id)
		})
		if err != nil {
			return nil, err
		}
		return preview, fmt.Errorf("delete variable %d: %w", id, ErrDestructiveOperationPending)
	}

	err = s.store.Transaction(func(tx TreeStore) error {
		parentPath := ""
		parentLevel := -1
		if v.ParentID != nil {
			parent, err := tx.VariableByID(*v.ParentID)
			if err != nil {
				return err
			}
			parentPath = parent.Path
			parentLevel = parent.Level
		}
		if err := tx.DeleteAnswersForQuestions(questionIDs); err != nil {
			return err
		}
		if err := tx.DeleteQuestionsByVariable(id); err != nil {
			return fmt.Errorf("force delete variable %d: %w: %w", id, ErrPartialMutation, err)
		}
		for _, child := range children {
			fresh, err := tx.VariableByID(child.ID)
			if err != nil {
				return err
			}
			fresh.ParentID = v.ParentID
			fresh.LeverID = v.LeverID
			if err := tx.SaveVariable(fresh); err != nil {
				return fmt.Errorf("force delete variable %d: %w: %w", id, ErrPartialMutation, err)
			}
			if err := RecomputeSubtree(tx, fresh.ID, parentPath, parentLevel); err != nil {
				return fmt.Errorf("force delete variable %d: %w: %w", id, ErrPartialMutation, err)
			}
		}
		return tx.DeleteVariable(id)
	})
	if err != nil {
		return nil, err
	}
	return preview, nil
}

// SetVariableActive toggles a variable. Activation requires the whole
// ancestor chain (parents, lever, pillar) to be active; deactivation
// cascades through the subtree.
func (s *HierarchyService) SetVariableActive(id uint, active bool) error {
	v, err := s.store.VariableByID(id)
	if err != nil {
		return err
	}

	if !active {
		return s.store.Transaction(func(tx TreeStore) error {
			return deactivateSubtree(tx, id)
		})
	}

	node := v
	for depth := 0; ; depth++ {
		if depth > maxTreeDepth {
			return ErrDepthExceeded
		}
		if node.ParentID == nil {
			break
		}
		parent, err := s.store.VariableByID(*node.ParentID)
		if err != nil {
			return err
		}
		if !parent.IsActive {
			return fmt.Errorf("variable %d under inactive variable %d: %w", id, parent.ID, ErrInactiveAncestor)
		}
		node = parent
	}
	if node.LeverID == nil {
		return fmt.Errorf("variable %d has no lever root: %w", node.ID, ErrInvalidOwnership)
	}
	lever, err := s.store.LeverByID(*node.LeverID)
	if err != nil {
		return err
	}
	if !lever.IsActive {
		return fmt.Errorf("variable %d under inactive lever %d: %w", id, lever.ID, ErrInactiveAncestor)
	}
	pillar, err := s.store.PillarByID(lever.PillarID)
	if err != nil {
		return err
	}
	if !pillar.IsActive {
		return fmt.Errorf("variable %d under inactive pillar %d: %w", id, pillar.ID, ErrInactiveAncestor)
	}

	v.IsActive = true
	return s.store.SaveVariable(v)
}

// SetLeverActive toggles a lever. A lever cannot be activated while its
// pillar is inactive; deactivation cascades into every variable forest
// rooted under it.
func (s *HierarchyService) SetLeverActive(id uint, active bool) error {
	lever, err := s.store.LeverByID(id)
	if err != nil {
		return err
	}
	if active {
		pillar, err := s.store.PillarByID(lever.PillarID)
		if err != nil {
			return err
		}
		if !pillar.IsActive {
			return fmt.Errorf("lever %d under inactive pillar %d: %w", id, pillar.ID, ErrInactiveAncestor)
		}
		lever.IsActive = true
		return s.store.SaveLever(lever)
	}
	return s.store.Transaction(func(tx TreeStore) error {
		lever.IsActive = false
		if err := tx.SaveLever(lever); err != nil {
			return err
		}
		return deactivateLeverForest(tx, lever.ID)
	})
}

// SetPillarActive toggles a pillar; deactivation cascades to all child
// levers and, transitively, their variable forests.
func (s *HierarchyService) SetPillarActive(id uint, active bool) error {
	pillar, err := s.store.PillarByID(id)
	if err != nil {
		return err
	}
	pillar.IsActive = active
	if active {
		return s.store.SavePillar(pillar)
	}
	return s.store.Transaction(func(tx TreeStore) error {
		if err := tx.SavePillar(pillar); err != nil {
			return err
		}
		levers, err := tx.LeversByPillar(id)
		if err != nil {
			return err
		}
		for _, lever := range levers {
			lever.IsActive = false
			if err := tx.SaveLever(&lever); err != nil {
				return err
			}
			if err := deactivateLeverForest(tx, lever.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePillar soft-deletes a pillar, which is only allowed once it has no
// levers left.
func (s *HierarchyService) DeletePillar(id uint) error {
	pillar, err := s.store.PillarByID(id)
	if err != nil {
		return err
	}
	levers, err := s.store.LeversByPillar(id)
	if err != nil {
		return err
	}
	if len(levers) > 0 {
		return fmt.Errorf("pillar %d still owns %d levers: %w", id, len(levers), ErrDestructiveOperationPending)
	}
	pillar.IsActive = false
	return s.store.SavePillar(pillar)
}

type VariableStats struct {
	DirectChildren   int    `json:"direct_children"`
	DirectQuestions  int    `json:"direct_questions"`
	TotalDescendants int    `json:"total_descendants"`
	TotalQuestions   int    `json:"total_questions"`
	Level            int    `json:"level"`
	Path             string `json:"path"`
}

func (s *HierarchyService) Stats(id uint) (*VariableStats, error) {
	v, err := s.store.VariableByID(id)
	if err != nil {
		return nil, err
	}
	directQs, err := s.store.QuestionsByVariable(id)
	if err != nil {
		return nil, err
	}
	directChildren, err := s.store.Children(id)
	if err != nil {
		return nil, err
	}
	desc, err := descendantIDs(s.store, id)
	if err != nil {
		return nil, err
	}

	totalQuestions := len(directQs)
	for descID := range desc {
		qs, err := s.store.QuestionsByVariable(descID)
		if err != nil {
			return nil, err
		}
		totalQuestions += len(qs)
	}

	return &VariableStats{
		DirectChildren:   len(directChildren),
		DirectQuestions:  len(directQs),
		TotalDescendants: len(desc),
		TotalQuestions:   totalQuestions,
		Level:            v.Level,
		Path:             v.Path,
	}, nil
}

// TreeNode is the nested read model returned for "hierarchy under lever"
// queries.
type TreeNode struct {
	Variable  models.Variable           `json:"variable"`
	Questions []models.VariableQuestion `json:"questions"`
	Children  []*TreeNode               `json:"children"`
}

// Tree loads the full variable forest under a lever with questions, to
// arbitrary depth (bounded by maxTreeDepth).
func (s *HierarchyService) Tree(leverID uint) ([]*TreeNode, error) {
	if _, err := s.store.LeverByID(leverID); err != nil {
		return nil, err
	}
	roots, err := s.store.RootVariables(leverID)
	if err != nil {
		return nil, err
	}

	type frame struct {
		node  *TreeNode
		depth int
	}
	var forest []*TreeNode
	var stack []frame
	for _, root := range roots {
		n := &TreeNode{Variable: root}
		forest = append(forest, n)
		stack = append(stack, frame{node: n})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTreeDepth {
			return nil, ErrDepthExceeded
		}

		qs, err := s.store.QuestionsByVariable(f.node.Variable.ID)
		if err != nil {
			return nil, err
		}
		f.node.Questions = qs

		children, err := s.store.Children(f.node.Variable.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			n := &TreeNode{Variable: child}
			f.node.Children = append(f.node.Children, n)
			stack = append(stack, frame{node: n, depth: f.depth + 1})
		}
	}
	return forest, nil
}

// rootLeverOf walks the parent chain up to the forest root and returns its
// owning lever id.
func (s *HierarchyService) rootLeverOf(v *models.Variable) (uint, error) {
	node := v
	for depth := 0; ; depth++ {
		if depth > maxTreeDepth {
			return 0, ErrDepthExceeded
		}
		if node.LeverID != nil {
			return *node.LeverID, nil
		}
		if node.ParentID == nil {
			return 0, fmt.Errorf("variable %d has neither parent nor lever: %w", node.ID, ErrInvalidOwnership)
		}
		parent, err := s.store.VariableByID(*node.ParentID)
		if err != nil {
			return 0, err
		}
		node = parent
	}
}

// lockLevers takes the structural-edit mutex of every given lever in id
// order (so cross-lever moves cannot deadlock) and returns the combined
// unlock.
func (s *HierarchyService) lockLevers(ids ...uint) func() {
	uniq := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	muxes := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
		mu := m.(*sync.Mutex)
		mu.Lock()
		muxes = append(muxes, mu)
	}
	return func() {
		for i := len(muxes) - 1; i >= 0; i-- {
			muxes[i].Unlock()
		}
	}
}

func deactivateSubtree(store TreeStore, rootID uint) error {
	type frame struct {
		id    uint
		depth int
	}
	stack := []frame{{id: rootID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTreeDepth {
			return ErrDepthExceeded
		}

		v, err := store.VariableByID(f.id)
		if err != nil {
			return err
		}
		if v.IsActive {
			v.IsActive = false
			if err := store.SaveVariable(v); err != nil {
				return err
			}
		}
		children, err := store.Children(f.id)
		if err != nil {
			return err
		}
		for _, child := range children {
			stack = append(stack, frame{id: child.ID, depth: f.depth + 1})
		}
	}
	return nil
}

func deactivateLeverForest(store TreeStore, leverID uint) error {
	roots, err := store.RootVariables(leverID)
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := deactivateSubtree(store, root.ID); err != nil {
			return err
		}
	}
	return nil
}
