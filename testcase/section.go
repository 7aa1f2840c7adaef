package testcase

import "fmt"

// sectionStack tracks the tags of the sections a test body is in. Leaving a
// section restores the tags of its parent.
type sectionStack struct {
	frames [][]string
}

func (s *sectionStack) push(tags []string) {
	s.frames = append(s.frames, tags)
}

func (s *sectionStack) pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// current returns the tags of the innermost section, nil at the top level.
func (s *sectionStack) current() []string {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *sectionStack) reset() {
	clear(s.frames)
	s.frames = s.frames[:0]
}

// Control flow signals. They travel as panics and are recovered by the scope
// they target, so they never escape Test.Run.
type (
	// leaveScope ends the innermost section, or the body at the top level.
	leaveScope struct{}
	// stopTest ends the whole test body.
	stopTest struct{}
)

// bodyPanic carries a panic raised by user code to the top level, remembering
// the section it was raised in.
type bodyPanic struct {
	value    any
	sections []string
}

func (p *bodyPanic) String() string {
	return fmt.Sprintf("panic: %v", p.value)
}
