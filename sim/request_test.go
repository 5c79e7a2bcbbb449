package sim

import (
	"math"
	"testing"

	"github.com/markphelps/optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_InvalidServiceTime_Panics(t *testing.T) {
	assert.Panics(t, func() { NewRequest(0, 0, -1) })
	assert.Panics(t, func() { NewRequest(0, 0, math.NaN()) })
}

func TestUpdateServiceTime_CarvesQuanta_ConservesWork(t *testing.T) {
	// GIVEN a request needing 120 units
	req := NewRequest(1, 0, 120)

	// WHEN quanta of 50 are carved until nothing is left
	var quanta []float64
	for {
		before := req.ServiceTime
		req.UpdateServiceTime(50)
		// THEN runtime + service_time after equals service_time before
		require.Equal(t, before, req.Runtime+req.ServiceTime)
		if req.Runtime == 0 {
			break
		}
		quanta = append(quanta, req.Runtime)
	}

	assert.Equal(t, []float64{50, 50, 20}, quanta)
	assert.Equal(t, 0.0, req.ServiceTime)
}

func TestUpdateServiceTime_ExactMultiple(t *testing.T) {
	req := NewRequest(1, 0, 100)
	req.UpdateServiceTime(50)
	assert.Equal(t, 50.0, req.Runtime)
	assert.Equal(t, 50.0, req.ServiceTime)
	req.UpdateServiceTime(50)
	assert.Equal(t, 50.0, req.Runtime)
	assert.Equal(t, 0.0, req.ServiceTime)
}

func TestUpdateServiceTime_NonPositiveQuantum_Panics(t *testing.T) {
	req := NewRequest(1, 0, 10)
	assert.Panics(t, func() { req.UpdateServiceTime(0) })
	assert.Panics(t, func() { req.UpdateServiceTime(-5) })
}

func TestConsume_MoreThanOriginal_Panics(t *testing.T) {
	req := NewRequest(1, 0, 10)
	req.Consume(6)
	req.Consume(4)
	assert.Equal(t, 10.0, req.Serviced)
	assert.Panics(t, func() { req.Consume(1) })
	assert.Panics(t, func() { NewRequest(2, 0, 1).Consume(-1) })
}

func TestRemainingWork_RuntimePlusServiceTime(t *testing.T) {
	req := NewRequest(1, 0, 80)
	req.UpdateServiceTime(30)
	assert.Equal(t, 80.0, req.RemainingWork())
}

func TestPriorityOr_AbsentUsesDefault(t *testing.T) {
	req := NewRequest(1, 0, 1)
	assert.Equal(t, NoPriority, req.PriorityOr(NoPriority))
	req.Priority = optional.NewInt(2)
	assert.Equal(t, 2, req.PriorityOr(NoPriority))
}

func TestRequest_String_IncludesOptionalFields(t *testing.T) {
	req := NewRequest(3, 5, 10)
	assert.NotContains(t, req.String(), "Priority")
	req.Priority = optional.NewInt(1)
	req.DestinationCore = optional.NewInt(2)
	assert.Contains(t, req.String(), "Priority: 1")
	assert.Contains(t, req.String(), "Core: 2")
}
