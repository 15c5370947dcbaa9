package maze

// ChooseDoor tries to leave the current room through door.
//
// It reports false without changing state when the maze is empty, the door
// is out of range or closed, or no context answers to it. Otherwise the
// context fires and the signature of the effect room decides the outcome:
// on success (or when force is set) the maze moves, time advances and every
// context pending at the new room is delivered. On failure the contexts
// scheduled at the effect room are dropped.
//
// The returned signature is owned by the maze; clone it before keeping it.
func (m *Maze) ChooseDoor(door int, force bool) (*Signature, bool) {
	room := m.CurrentRoom()
	if room == nil || door < 0 || door >= m.NumDoors || !room.Doors[door] {
		return nil, false
	}

	link := -1
	for _, ci := range room.CauseContexts {
		if m.context(ci).Door == door {
			link = ci
			break
		}
	}
	if link < 0 {
		return nil, false
	}

	m.fireCause(link)
	target := m.context(link).Effect.Index
	sig := m.signatureAt(target)
	effect := m.room(target)

	if !sig.Success && !force {
		for _, ci := range effect.Pending {
			m.context(ci).EffectTimer = -1
		}
		effect.Pending = nil
		return sig, false
	}

	m.Current = target
	m.ExpireContexts()

	arrived := effect.Pending
	effect.Pending = nil
	for _, ci := range arrived {
		m.context(ci).EffectTimer = -1
	}
	for _, ci := range arrived {
		m.fireEffect(ci)
	}
	return sig, true
}

// fireCause schedules delivery of context i at its effect. Contexts pending
// at i travel along with it.
func (m *Maze) fireCause(i int) {
	c := m.context(i)
	if c.EffectTimer >= 0 {
		return
	}
	c.EffectTimer = c.EffectDelay

	dst := m.pending(c.Effect)
	*dst = append(*dst, i)
	for _, pi := range c.Pending {
		m.context(pi).EffectTimer += c.EffectTimer
		*dst = append(*dst, pi)
	}
	c.Pending = nil

	for _, ci := range c.CauseContexts {
		m.boostTimer(ci, c.EffectTimer)
	}
}

func (m *Maze) boostTimer(i, inc int) {
	c := m.context(i)
	if c.EffectTimer >= 0 {
		return
	}
	for _, pi := range c.Pending {
		m.context(pi).EffectTimer += inc
	}
	for _, ci := range c.CauseContexts {
		m.boostTimer(ci, inc)
	}
}

func (m *Maze) fireEffect(i int) {
	for _, ci := range m.context(i).CauseContexts {
		m.fireCause(ci)
	}
}

// ExpireContexts advances time by one tick. Contexts whose countdown runs
// out are dropped from the component they were pending at.
func (m *Maze) ExpireContexts() {
	for _, r := range m.Rooms {
		r.Pending = m.expire(r.Pending, 0)
	}
	for _, c := range m.Contexts {
		c.Pending = m.expire(c.Pending, 1)
	}
}

func (m *Maze) expire(pending []int, floor int) []int {
	kept := pending[:0]
	for _, ci := range pending {
		c := m.context(ci)
		c.EffectTimer--
		if c.EffectTimer >= floor {
			kept = append(kept, ci)
			continue
		}
		c.EffectTimer = -1
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// signatureAt returns the signature of room i for its current pending set,
// creating and drawing it on first use.
func (m *Maze) signatureAt(i int) *Signature {
	probe := m.probe(i)
	r := m.room(i)
	for _, s := range r.signatures {
		if s.Match(probe) {
			return s
		}
	}
	probe.Success = probe.Draw(r.InstanceSeed)
	r.signatures = append(r.signatures, probe)
	return probe
}

func (m *Maze) probe(i int) *Signature {
	r := m.room(i)
	ids := make([]int, 0, len(r.Pending)+1)
	ids = append(ids, r.ID)
	probability := 0.0
	for _, ci := range r.Pending {
		c := m.context(ci)
		ids = append(ids, c.ID)
		probability += c.Probability
	}
	return NewSignature(ids, probability)
}

// Room reports the current room. Goals are reported the first time a room
// is sensed under a given signature and read as all false afterwards.
func (m *Maze) Room() RoomView {
	v := m.view()
	if m.Current < 0 {
		return v
	}
	sig := m.signatureAt(m.Current)
	if !sig.Consumed {
		sig.Consumed = true
		copy(v.Goals, m.room(m.Current).Goals)
	}
	return v
}

// Peek is Room without consuming the goals.
func (m *Maze) Peek() RoomView {
	v := m.view()
	if m.Current < 0 {
		return v
	}
	probe := m.probe(m.Current)
	r := m.room(m.Current)
	for _, s := range r.signatures {
		if s.Match(probe) && s.Consumed {
			return v
		}
	}
	copy(v.Goals, r.Goals)
	return v
}

func (m *Maze) view() RoomView {
	v := RoomView{
		ID:    -1,
		Index: m.Current,
		Doors: make([]bool, m.NumDoors),
		Goals: make([]bool, m.NumGoals),
	}
	if r := m.CurrentRoom(); r != nil {
		v.ID = r.ID
		v.Mark = r.Mark
		copy(v.Doors, r.Doors)
	}
	return v
}
