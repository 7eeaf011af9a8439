package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// MemoryStore is a non-persistent Store for tests and throwaway sessions.
type MemoryStore struct {
	mu        sync.RWMutex
	subjects  map[string]*Subject
	samples   map[string][]mood.Sample
	sampleIDs map[uuid.UUID]struct{}
	alerts    map[uuid.UUID]*Alert
	bySubject map[string][]uuid.UUID
	appts     map[uuid.UUID]*Appointment
	apptCodes map[string]struct{}
	apptOrder map[string][]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects:  make(map[string]*Subject),
		samples:   make(map[string][]mood.Sample),
		sampleIDs: make(map[uuid.UUID]struct{}),
		alerts:    make(map[uuid.UUID]*Alert),
		bySubject: make(map[string][]uuid.UUID),
		appts:     make(map[uuid.UUID]*Appointment),
		apptCodes: make(map[string]struct{}),
		apptOrder: make(map[string][]uuid.UUID),
	}
}

func (s *MemoryStore) Close() error { return nil }

// ensureSubjectLocked expects s.mu to be held for writing.
func (s *MemoryStore) ensureSubjectLocked(subjectID string) *Subject {
	subj, ok := s.subjects[subjectID]
	if !ok {
		subj = &Subject{ID: subjectID, CreatedAt: time.Now().UTC()}
		s.subjects[subjectID] = subj
	}
	return subj
}

func (s *MemoryStore) LoadSamples(_ context.Context, subjectID string) ([]mood.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]mood.Sample, len(s.samples[subjectID]))
	copy(out, s.samples[subjectID])
	return out, nil
}

func (s *MemoryStore) AppendSample(_ context.Context, sample mood.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.sampleIDs[sample.ID]; dup {
		return ErrDuplicateSample
	}
	s.ensureSubjectLocked(sample.SubjectID)
	s.sampleIDs[sample.ID] = struct{}{}
	s.samples[sample.SubjectID] = append(s.samples[sample.SubjectID], sample)
	return nil
}

func (s *MemoryStore) DeleteSamples(_ context.Context, subjectID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.samples[subjectID]
	for _, sample := range removed {
		delete(s.sampleIDs, sample.ID)
	}
	delete(s.samples, subjectID)
	return int64(len(removed)), nil
}

func (s *MemoryStore) CreateSubject(_ context.Context, subjectID, displayName string) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.ensureSubjectLocked(subjectID)
	subj.DisplayName = displayName
	out := *subj
	out.SampleCount = len(s.samples[subjectID])
	return out, nil
}

func (s *MemoryStore) ListSubjects(_ context.Context) ([]Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Subject, 0, len(s.subjects))
	for id, subj := range s.subjects {
		cp := *subj
		cp.SampleCount = len(s.samples[id])
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveAlert(_ context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureSubjectLocked(alert.SubjectID)
	a := alert
	s.alerts[a.ID] = &a
	s.bySubject[a.SubjectID] = append(s.bySubject[a.SubjectID], a.ID)
	return nil
}

func (s *MemoryStore) ListAlerts(_ context.Context, subjectID string, includeDismissed bool) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Alert{}
	for _, id := range s.bySubject[subjectID] {
		a := s.alerts[id]
		if a.Dismissed && !includeDismissed {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *MemoryStore) DismissAlert(_ context.Context, alertID uuid.UUID, actionTaken string) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[alertID]
	if !ok {
		return Alert{}, ErrAlertNotFound
	}
	a.Dismissed = true
	a.ActionTaken = actionTaken
	return *a, nil
}

func (s *MemoryStore) SaveAppointment(_ context.Context, appt Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.apptCodes[appt.Code]; dup {
		return ErrDuplicateAppointmentCode
	}
	s.ensureSubjectLocked(appt.SubjectID)
	a := appt
	s.appts[a.ID] = &a
	s.apptCodes[a.Code] = struct{}{}
	s.apptOrder[a.SubjectID] = append(s.apptOrder[a.SubjectID], a.ID)
	return nil
}

func (s *MemoryStore) ListAppointments(_ context.Context, subjectID string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Appointment{}
	for _, id := range s.apptOrder[subjectID] {
		out = append(out, *s.appts[id])
	}
	return out, nil
}

func (s *MemoryStore) SetAppointmentStatus(_ context.Context, appointmentID uuid.UUID, status AppointmentStatus) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appts[appointmentID]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	a.Status = status
	return *a, nil
}
