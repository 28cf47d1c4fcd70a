package gpuparticles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackFlagsSetsDefinedBits(t *testing.T) {
	tmpl := &EmitterTemplate{
		Continuous:            true,
		LockTranslation:       true,
		LockRotation:          LockEnabled,
		LockScaleX:            LockEmitOnly,
		LockScaleY:            LockDisabled,
		LockScaleZ:            LockEnabled,
		LockMovement:          true,
		ReverseBones:          true,
		LockTranslationToBone: true,
		LockRotationToBone:    LockEmitOnly,
		LockMovementToBone:    true,
	}
	em := &Emitter{
		flagActive:     true,
		flagNew:        true,
		flagTeleported: true,
		flagVisible:    true,
		flagWasCulled:  false,
	}

	packed := packFlags(em, tmpl, true)

	assert.NotZero(t, packed&FlagActiveOrLastEmit)
	assert.NotZero(t, packed&FlagContinuous)
	assert.NotZero(t, packed&FlagLockTranslation)
	assert.NotZero(t, packed&FlagLockRotation)
	assert.NotZero(t, packed&FlagLockRotationEmitOnly)
	assert.Zero(t, packed&FlagLockScaleX)
	assert.NotZero(t, packed&FlagLockScaleXEmitOnly)
	assert.Zero(t, packed&FlagLockScaleY)
	assert.NotZero(t, packed&FlagLockScaleZ)
	assert.NotZero(t, packed&FlagLockMovement)
	assert.NotZero(t, packed&FlagReverseBones)
	assert.NotZero(t, packed&FlagNew)
	assert.NotZero(t, packed&FlagTeleported)
	assert.NotZero(t, packed&FlagLockTranslationToBone)
	assert.NotZero(t, packed&FlagLockRotationToBoneEmit)
	assert.NotZero(t, packed&FlagLockMovementToBone)
	assert.NotZero(t, packed&FlagVisibleAndNotCulled)
	assert.NotZero(t, packed&FlagDynamicCullingEnabled)

	assert.Equal(t, packed, packed&uint32(definedFlagBits))
}

func TestPackFlagsVisibleRequiresNotCulled(t *testing.T) {
	tmpl := &EmitterTemplate{}
	em := &Emitter{flagVisible: true, flagWasCulled: true}
	packed := packFlags(em, tmpl, false)
	assert.Zero(t, packed&FlagVisibleAndNotCulled)
}

func TestLockBitsDisabledIsZero(t *testing.T) {
	assert.Zero(t, lockBits(LockDisabled, 1, 2))
}

func TestUnpackRoundTripsPack(t *testing.T) {
	f := Flags{
		ActiveOrLastEmit:      true,
		Continuous:            true,
		LockTranslation:       true,
		LockRotation:          LockEnabled,
		LockScaleX:            LockEmitOnly,
		LockScaleY:            LockDisabled,
		LockScaleZ:            LockEnabled,
		LockMovement:          true,
		ReverseBones:          true,
		New:                   true,
		Teleported:            true,
		LockTranslationToBone: true,
		LockRotationToBone:    LockEmitOnly,
		LockMovementToBone:    true,
		VisibleAndNotCulled:   true,
		DynamicCullingEnabled: true,
	}

	assert.Equal(t, f, unpack(pack(f)))
}

func TestUnpackRoundTripsPackAllFieldsCleared(t *testing.T) {
	var f Flags
	assert.Equal(t, f, unpack(pack(f)))
}

func TestUnpackIgnoresBitsOutsideDefinedSet(t *testing.T) {
	f := Flags{Continuous: true}
	word := pack(f) | (1 << 31)
	assert.Equal(t, f, unpack(word))
}
