package gpuparticles

// packedFlag bit positions for the GPU-facing packed flags word (spec §4.3,
// §6). Bit positions must match the shader's expectations exactly; they are
// a superset of the original's PackFlags, extended to cover every bit the
// spec calls out (bone-lock variants, visibility, dynamic culling) since
// the original only packed the subset its particular shader consumed.
const (
	FlagActiveOrLastEmit         uint32 = 1 << 0
	FlagContinuous               uint32 = 1 << 1
	FlagLockTranslation          uint32 = 1 << 2
	FlagLockRotation             uint32 = 1 << 3 // set for Enabled only
	FlagLockRotationEmitOnly     uint32 = 1 << 4 // set for both Enabled and EmitOnly
	FlagLockScaleX               uint32 = 1 << 5
	FlagLockScaleXEmitOnly       uint32 = 1 << 6
	FlagLockScaleY               uint32 = 1 << 7
	FlagLockScaleYEmitOnly       uint32 = 1 << 8
	FlagLockScaleZ               uint32 = 1 << 9
	FlagLockScaleZEmitOnly       uint32 = 1 << 10
	FlagLockMovement             uint32 = 1 << 11
	FlagReverseBones             uint32 = 1 << 12
	FlagNew                      uint32 = 1 << 13
	FlagTeleported               uint32 = 1 << 14
	FlagLockTranslationToBone    uint32 = 1 << 15
	FlagLockRotationToBone       uint32 = 1 << 16
	FlagLockRotationToBoneEmit   uint32 = 1 << 17
	FlagLockMovementToBone       uint32 = 1 << 18
	FlagVisibleAndNotCulled      uint32 = 1 << 19
	FlagDynamicCullingEnabled    uint32 = 1 << 20
)

// definedFlagBits is the set of bits pack/unpack round-trips, used by
// tests to verify unpack(pack(f)) == f restricted to defined bits.
const definedFlagBits = FlagActiveOrLastEmit | FlagContinuous | FlagLockTranslation |
	FlagLockRotation | FlagLockRotationEmitOnly |
	FlagLockScaleX | FlagLockScaleXEmitOnly | FlagLockScaleY | FlagLockScaleYEmitOnly |
	FlagLockScaleZ | FlagLockScaleZEmitOnly | FlagLockMovement | FlagReverseBones |
	FlagNew | FlagTeleported | FlagLockTranslationToBone |
	FlagLockRotationToBone | FlagLockRotationToBoneEmit | FlagLockMovementToBone |
	FlagVisibleAndNotCulled | FlagDynamicCullingEnabled

// lockBits returns (enabledBit|emitOnlyBit if mode is Enabled, emitOnlyBit
// if mode is EmitOnly, 0 if Disabled) folding a LockMode into the two-bit shader
// encoding used for rotation and each scale axis.
func lockBits(mode LockMode, enabledBit, emitOnlyBit uint32) uint32 {
	switch mode {
	case LockEnabled:
		return enabledBit | emitOnlyBit
	case LockEmitOnly:
		return emitOnlyBit
	default:
		return 0
	}
}

// unpackLockBits is lockBits' inverse: given the two bits an axis was
// folded into, report which LockMode produced them.
func unpackLockBits(word, enabledBit, emitOnlyBit uint32) LockMode {
	switch {
	case word&enabledBit != 0 && word&emitOnlyBit != 0:
		return LockEnabled
	case word&emitOnlyBit != 0:
		return LockEmitOnly
	default:
		return LockDisabled
	}
}

// Flags is the decoded, boolean form of the packed GPU flags word (spec
// §4.3, §6) — one field per defined bit. packFlags derives one of these
// from an emitter and template before folding it into a uint32; unpack
// decodes a packed word back into one.
type Flags struct {
	ActiveOrLastEmit       bool
	Continuous             bool
	LockTranslation        bool
	LockRotation           LockMode
	LockScaleX             LockMode
	LockScaleY             LockMode
	LockScaleZ             LockMode
	LockMovement           bool
	ReverseBones           bool
	New                    bool
	Teleported             bool
	LockTranslationToBone  bool
	LockRotationToBone     LockMode
	LockMovementToBone     bool
	VisibleAndNotCulled    bool
	DynamicCullingEnabled  bool
}

// pack folds f into the packed word layout defined by the Flag*
// constants above.
func pack(f Flags) uint32 {
	var r uint32
	if f.ActiveOrLastEmit {
		r |= FlagActiveOrLastEmit
	}
	if f.Continuous {
		r |= FlagContinuous
	}
	if f.LockTranslation {
		r |= FlagLockTranslation
	}
	r |= lockBits(f.LockRotation, FlagLockRotation, FlagLockRotationEmitOnly)
	r |= lockBits(f.LockScaleX, FlagLockScaleX, FlagLockScaleXEmitOnly)
	r |= lockBits(f.LockScaleY, FlagLockScaleY, FlagLockScaleYEmitOnly)
	r |= lockBits(f.LockScaleZ, FlagLockScaleZ, FlagLockScaleZEmitOnly)
	if f.LockMovement {
		r |= FlagLockMovement
	}
	if f.ReverseBones {
		r |= FlagReverseBones
	}
	if f.New {
		r |= FlagNew
	}
	if f.Teleported {
		r |= FlagTeleported
	}
	if f.LockTranslationToBone {
		r |= FlagLockTranslationToBone
	}
	r |= lockBits(f.LockRotationToBone, FlagLockRotationToBone, FlagLockRotationToBoneEmit)
	if f.LockMovementToBone {
		r |= FlagLockMovementToBone
	}
	if f.VisibleAndNotCulled {
		r |= FlagVisibleAndNotCulled
	}
	if f.DynamicCullingEnabled {
		r |= FlagDynamicCullingEnabled
	}
	return r
}

// unpack decodes word's defined bits back into a Flags value — the
// inverse of pack, restricted to the bits pack/packFlags define (spec
// §8's packed-flags round-trip property: unpack(pack(f)) == f). Bits
// outside definedFlagBits (none currently reserved, but shader layouts
// grow) are ignored rather than rejected.
func unpack(word uint32) Flags {
	return Flags{
		ActiveOrLastEmit:      word&FlagActiveOrLastEmit != 0,
		Continuous:            word&FlagContinuous != 0,
		LockTranslation:       word&FlagLockTranslation != 0,
		LockRotation:          unpackLockBits(word, FlagLockRotation, FlagLockRotationEmitOnly),
		LockScaleX:            unpackLockBits(word, FlagLockScaleX, FlagLockScaleXEmitOnly),
		LockScaleY:            unpackLockBits(word, FlagLockScaleY, FlagLockScaleYEmitOnly),
		LockScaleZ:            unpackLockBits(word, FlagLockScaleZ, FlagLockScaleZEmitOnly),
		LockMovement:          word&FlagLockMovement != 0,
		ReverseBones:          word&FlagReverseBones != 0,
		New:                   word&FlagNew != 0,
		Teleported:            word&FlagTeleported != 0,
		LockTranslationToBone: word&FlagLockTranslationToBone != 0,
		LockRotationToBone:    unpackLockBits(word, FlagLockRotationToBone, FlagLockRotationToBoneEmit),
		LockMovementToBone:    word&FlagLockMovementToBone != 0,
		VisibleAndNotCulled:   word&FlagVisibleAndNotCulled != 0,
		DynamicCullingEnabled: word&FlagDynamicCullingEnabled != 0,
	}
}

// packFlags derives the GPU-facing packed flags word from an emitter's
// current runtime state and its template, per spec §4.3.
func packFlags(e *Emitter, t *EmitterTemplate, dynamicCullingEnabled bool) uint32 {
	return pack(Flags{
		ActiveOrLastEmit:      e.flagActive || e.flagLastEmit,
		Continuous:            t.Continuous,
		LockTranslation:       t.LockTranslation,
		LockRotation:          t.LockRotation,
		LockScaleX:            t.LockScaleX,
		LockScaleY:            t.LockScaleY,
		LockScaleZ:            t.LockScaleZ,
		LockMovement:          t.LockMovement,
		ReverseBones:          t.ReverseBones,
		New:                   e.flagNew,
		Teleported:            e.flagTeleported,
		LockTranslationToBone: t.LockTranslationToBone,
		LockRotationToBone:    t.LockRotationToBone,
		LockMovementToBone:    t.LockMovementToBone,
		VisibleAndNotCulled:   e.flagVisible && !e.flagWasCulled,
		DynamicCullingEnabled: dynamicCullingEnabled,
	})
}
