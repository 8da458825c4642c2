package services

// RecomputeSubtree rewrites the derived level and path of the variable
// rootID and every descendant, given the path and level of its (possibly
// new) parent. Pass parentPath="" and parentLevel=-1 for a root variable
// owned directly by a lever.
//
// The walk is an explicit-stack pre-order so a deep or corrupted tree
// cannot blow the goroutine stack; past maxTreeDepth it returns
// ErrDepthExceeded. Callers are expected to run it inside a store
// transaction so a failed write rolls the whole repair back.
func RecomputeSubtree(store TreeStore, rootID uint, parentPath string, parentLevel int) error {
	type frame struct {
		id          uint
		parentPath  string
		parentLevel int
		depth       int
	}

	stack := []frame{{id: rootID, parentPath: parentPath, parentLevel: parentLevel}}
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
		if f.parentPath == "" {
			v.Path = v.Name
		} else {
			v.Path = f.parentPath + PathSeparator + v.Name
		}
		v.Level = f.parentLevel + 1
		if v.Level > maxTreeDepth {
			// A move can push a legal subtree below the absolute cap
			// even when its root still fits.
			return ErrDepthExceeded
		}
		if err := store.SaveVariable(v); err != nil {
			return err
		}

		children, err := store.Children(v.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			stack = append(stack, frame{
				id:          child.ID,
				parentPath:  v.Path,
				parentLevel: v.Level,
				depth:       f.depth + 1,
			})
		}
	}
	return nil
}

// descendantIDs collects the transitive child closure of a variable,
// excluding the variable itself.
func descendantIDs(store TreeStore, id uint) (map[uint]struct{}, error) {
	type frame struct {
		id    uint
		depth int
	}

	out := make(map[uint]struct{})
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTreeDepth {
			return nil, ErrDepthExceeded
		}

		children, err := store.Children(f.id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			out[child.ID] = struct{}{}
			stack = append(stack, frame{id: child.ID, depth: f.depth + 1})
		}
	}
	return out, nil
}
