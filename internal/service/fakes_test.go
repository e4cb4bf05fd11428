package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository"
)

// memStore backs the in-memory repositories used by the service tests.
// One mutex guards everything so the claim and transition paths keep
// the same check-then-set atomicity the SQL layer gets from
// transactions and conditional updates.
type memStore struct {
	mu           sync.Mutex
	exhibitions  map[uuid.UUID]domain.Exhibition
	units        map[uuid.UUID]bool
	amenities    map[uuid.UUID]domain.Amenity
	stallTypes   map[uuid.UUID]domain.StallType
	typeOrder    []uuid.UUID
	instances    map[uuid.UUID]domain.StallInstance
	applications map[uuid.UUID]domain.StallApplication
	payments     map[uuid.UUID]domain.PaymentSubmission
}

func newMemStore() *memStore {
	return &memStore{
		exhibitions:  make(map[uuid.UUID]domain.Exhibition),
		units:        make(map[uuid.UUID]bool),
		amenities:    make(map[uuid.UUID]domain.Amenity),
		stallTypes:   make(map[uuid.UUID]domain.StallType),
		instances:    make(map[uuid.UUID]domain.StallInstance),
		applications: make(map[uuid.UUID]domain.StallApplication),
		payments:     make(map[uuid.UUID]domain.PaymentSubmission),
	}
}

type memExhibitionRepo struct{ s *memStore }

func (r *memExhibitionRepo) Create(_ context.Context, e domain.Exhibition) (domain.Exhibition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e.ID = uuid.New()
	r.s.exhibitions[e.ID] = e
	return e, nil
}

func (r *memExhibitionRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Exhibition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.exhibitions[id]
	if !ok {
		return domain.Exhibition{}, repository.ErrExhibitionNotFound
	}
	return e, nil
}

func (r *memExhibitionRepo) FindAll(_ context.Context) ([]domain.Exhibition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exhibitions := make([]domain.Exhibition, 0, len(r.s.exhibitions))
	for _, e := range r.s.exhibitions {
		exhibitions = append(exhibitions, e)
	}
	return exhibitions, nil
}

func (r *memExhibitionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ExhibitionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.exhibitions[id]
	if !ok {
		return repository.ErrExhibitionNotFound
	}
	e.Status = status
	r.s.exhibitions[id] = e
	return nil
}

func (r *memExhibitionRepo) UnitExists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.units[id], nil
}

func (r *memExhibitionRepo) FindAmenities(_ context.Context, ids []uuid.UUID) ([]domain.Amenity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var amenities []domain.Amenity
	for _, id := range ids {
		if a, ok := r.s.amenities[id]; ok {
			amenities = append(amenities, a)
		}
	}
	return amenities, nil
}

type memStallRepo struct{ s *memStore }

func (r *memStallRepo) CreateType(_ context.Context, st domain.StallType) (domain.StallType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st.ID = uuid.New()
	r.s.stallTypes[st.ID] = st
	r.s.typeOrder = append(r.s.typeOrder, st.ID)
	return st, nil
}

func (r *memStallRepo) FindTypeByID(_ context.Context, id uuid.UUID) (domain.StallType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, ok := r.s.stallTypes[id]
	if !ok {
		return domain.StallType{}, repository.ErrStallTypeNotFound
	}
	return st, nil
}

func (r *memStallRepo) FindTypesByExhibitionID(_ context.Context, exhibitionID uuid.UUID) ([]domain.StallType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var stallTypes []domain.StallType
	for _, id := range r.s.typeOrder {
		if st, ok := r.s.stallTypes[id]; ok && st.ExhibitionID == exhibitionID {
			stallTypes = append(stallTypes, st)
		}
	}
	return stallTypes, nil
}

func (r *memStallRepo) UpdateType(_ context.Context, st domain.StallType) (domain.StallType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stallTypes[st.ID]; !ok {
		return domain.StallType{}, repository.ErrStallTypeNotFound
	}
	r.s.stallTypes[st.ID] = st
	return st, nil
}

func (r *memStallRepo) DeleteType(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stallTypes[id]; !ok {
		return repository.ErrStallTypeNotFound
	}
	for _, instance := range r.s.instances {
		if instance.StallTypeID == id && instance.Status != domain.StallAvailable {
			return repository.ErrStallTypeHasClaims
		}
	}
	for instanceID, instance := range r.s.instances {
		if instance.StallTypeID == id {
			delete(r.s.instances, instanceID)
		}
	}
	delete(r.s.stallTypes, id)
	return nil
}

func (r *memStallRepo) ApplyLayout(_ context.Context, batches []domain.LayoutBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, batch := range batches {
		for instanceID, instance := range r.s.instances {
			if instance.StallTypeID == batch.StallTypeID && instance.Status == domain.StallAvailable {
				delete(r.s.instances, instanceID)
			}
		}
		for _, instance := range batch.Instances {
			instance.ID = uuid.New()
			r.s.instances[instance.ID] = instance
		}
	}
	return nil
}

func (r *memStallRepo) FindInstanceByID(_ context.Context, id uuid.UUID) (domain.StallInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	instance, ok := r.s.instances[id]
	if !ok {
		return domain.StallInstance{}, repository.ErrStallInstanceNotFound
	}
	return instance, nil
}

func (r *memStallRepo) FindInstancesByExhibitionID(_ context.Context, exhibitionID uuid.UUID) ([]domain.StallInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var instances []domain.StallInstance
	for _, instance := range r.s.instances {
		if instance.ExhibitionID == exhibitionID {
			instances = append(instances, instance)
		}
	}
	return instances, nil
}

func (r *memStallRepo) FindInstancesByTypeID(_ context.Context, stallTypeID uuid.UUID) ([]domain.StallInstance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var instances []domain.StallInstance
	for _, instance := range r.s.instances {
		if instance.StallTypeID == stallTypeID {
			instances = append(instances, instance)
		}
	}
	return instances, nil
}

type memApplicationRepo struct{ s *memStore }

func (r *memApplicationRepo) CreateWithClaim(_ context.Context, application domain.StallApplication) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	instance, ok := r.s.instances[application.StallInstanceID]
	if !ok {
		return domain.StallApplication{}, repository.ErrStallInstanceNotFound
	}
	if instance.Status != domain.StallAvailable {
		return domain.StallApplication{}, repository.ErrStallUnavailable
	}

	instance.Status = domain.StallPending
	r.s.instances[instance.ID] = instance

	application.ID = uuid.New()
	application.ExhibitionID = instance.ExhibitionID
	application.Status = domain.ApplicationPending
	application.QuotedPrice = instance.EffectivePrice(r.s.stallTypes[instance.StallTypeID].Price)
	r.s.applications[application.ID] = application

	return application, nil
}

func (r *memApplicationRepo) FindByID(_ context.Context, id uuid.UUID) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(id)
}

func (r *memApplicationRepo) find(id uuid.UUID) (domain.StallApplication, error) {
	application, ok := r.s.applications[id]
	if !ok {
		return domain.StallApplication{}, repository.ErrApplicationNotFound
	}
	return application, nil
}

func (r *memApplicationRepo) FindByExhibitionID(_ context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var applications []domain.StallApplication
	for _, a := range r.s.applications {
		if a.ExhibitionID == exhibitionID {
			applications = append(applications, a)
		}
	}
	return applications, nil
}

func (r *memApplicationRepo) FindByBrandID(_ context.Context, brandID uuid.UUID) ([]domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var applications []domain.StallApplication
	for _, a := range r.s.applications {
		if a.BrandID == brandID {
			applications = append(applications, a)
		}
	}
	return applications, nil
}

func (r *memApplicationRepo) FindPendingByExhibitionID(_ context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var applications []domain.StallApplication
	for _, a := range r.s.applications {
		if a.ExhibitionID == exhibitionID && !a.Status.IsTerminal() {
			applications = append(applications, a)
		}
	}
	return applications, nil
}

func (r *memApplicationRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transition(id, from, to)
}

func (r *memApplicationRepo) transition(id uuid.UUID, from, to domain.ApplicationStatus) error {
	application, ok := r.s.applications[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if application.Status != from {
		return repository.ErrStaleApplicationStatus
	}
	application.Status = to
	r.s.applications[id] = application
	return nil
}

func (r *memApplicationRepo) releaseInstance(instanceID uuid.UUID, from, to domain.StallInstanceStatus) error {
	instance, ok := r.s.instances[instanceID]
	if !ok {
		return repository.ErrStallInstanceNotFound
	}
	if instance.Status != from {
		return repository.ErrStaleInstanceStatus
	}
	instance.Status = to
	r.s.instances[instanceID] = instance
	return nil
}

func (r *memApplicationRepo) RejectAndRelease(_ context.Context, id uuid.UUID) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, err := r.find(id)
	if err != nil {
		return domain.StallApplication{}, err
	}
	if err = r.transition(id, domain.ApplicationPending, domain.ApplicationRejected); err != nil {
		return domain.StallApplication{}, err
	}
	if err = r.releaseInstance(application.StallInstanceID, domain.StallPending, domain.StallAvailable); err != nil {
		return domain.StallApplication{}, err
	}

	application.Status = domain.ApplicationRejected
	return application, nil
}

func (r *memApplicationRepo) DeleteAndRelease(_ context.Context, id uuid.UUID) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, err := r.find(id)
	if err != nil {
		return domain.StallApplication{}, err
	}

	switch application.Status {
	case domain.ApplicationBooked:
		return domain.StallApplication{}, repository.ErrApplicationDeleteConflict
	case domain.ApplicationRejected:
	default:
		err = r.releaseInstance(application.StallInstanceID, domain.StallPending, domain.StallAvailable)
		if err != nil {
			return domain.StallApplication{}, err
		}
	}

	delete(r.s.applications, id)
	return application, nil
}

func (r *memApplicationRepo) VoidAndRelease(_ context.Context, id uuid.UUID) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, err := r.find(id)
	if err != nil {
		return domain.StallApplication{}, err
	}
	if application.Status.IsTerminal() {
		return domain.StallApplication{}, repository.ErrStaleApplicationStatus
	}

	for pid, p := range r.s.payments {
		if p.ApplicationID == id && p.Status == domain.PaymentPendingReview {
			reason := "application voided"
			p.Status = domain.PaymentRejected
			p.RejectionReason = &reason
			r.s.payments[pid] = p
		}
	}

	err = r.releaseInstance(application.StallInstanceID, domain.StallPending, domain.StallAvailable)
	if err != nil {
		return domain.StallApplication{}, err
	}

	application.Status = domain.ApplicationRejected
	r.s.applications[id] = application
	return application, nil
}

func (r *memApplicationRepo) CancelBookingRelease(_ context.Context, id uuid.UUID) (domain.StallApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, err := r.find(id)
	if err != nil {
		return domain.StallApplication{}, err
	}
	if err = r.transition(id, domain.ApplicationBooked, domain.ApplicationRejected); err != nil {
		return domain.StallApplication{}, err
	}
	if err = r.releaseInstance(application.StallInstanceID, domain.StallBooked, domain.StallAvailable); err != nil {
		return domain.StallApplication{}, err
	}

	application.Status = domain.ApplicationRejected
	return application, nil
}

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Submit(_ context.Context, submission domain.PaymentSubmission) (domain.PaymentSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	application, ok := r.s.applications[submission.ApplicationID]
	if !ok {
		return domain.PaymentSubmission{}, repository.ErrApplicationNotFound
	}
	if application.Status != domain.ApplicationPaymentPending {
		return domain.PaymentSubmission{}, repository.ErrInvalidApplicationState
	}
	application.Status = domain.ApplicationPaymentReview
	r.s.applications[application.ID] = application

	submission.ID = uuid.New()
	submission.Status = domain.PaymentPendingReview
	r.s.payments[submission.ID] = submission
	return submission, nil
}

func (r *memPaymentRepo) Review(_ context.Context, id uuid.UUID, decision domain.PaymentDecision, reviewerID uuid.UUID, rejectionReason string) (domain.PaymentSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	submission, ok := r.s.payments[id]
	if !ok {
		return domain.PaymentSubmission{}, repository.ErrPaymentNotFound
	}
	if submission.Status != domain.PaymentPendingReview {
		return domain.PaymentSubmission{}, repository.ErrStalePaymentStatus
	}

	application, ok := r.s.applications[submission.ApplicationID]
	if !ok {
		return domain.PaymentSubmission{}, repository.ErrApplicationNotFound
	}
	if application.Status != domain.ApplicationPaymentReview {
		return domain.PaymentSubmission{}, repository.ErrStaleApplicationStatus
	}

	now := time.Now()
	submission.ReviewedAt = &now
	submission.ReviewedBy = &reviewerID

	if decision == domain.PaymentDecisionApprove {
		submission.Status = domain.PaymentApproved
		application.Status = domain.ApplicationBooked

		instance := r.s.instances[application.StallInstanceID]
		instance.Status = domain.StallBooked
		r.s.instances[instance.ID] = instance
	} else {
		submission.Status = domain.PaymentRejected
		submission.RejectionReason = &rejectionReason
		application.Status = domain.ApplicationPaymentPending
	}

	r.s.payments[id] = submission
	r.s.applications[application.ID] = application
	return submission, nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (domain.PaymentSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	submission, ok := r.s.payments[id]
	if !ok {
		return domain.PaymentSubmission{}, repository.ErrPaymentNotFound
	}
	return submission, nil
}

func (r *memPaymentRepo) FindByApplicationID(_ context.Context, applicationID uuid.UUID) ([]domain.PaymentSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var submissions []domain.PaymentSubmission
	for _, p := range r.s.payments {
		if p.ApplicationID == applicationID {
			submissions = append(submissions, p)
		}
	}
	return submissions, nil
}

func (r *memPaymentRepo) FindPendingByExhibitionID(_ context.Context, exhibitionID uuid.UUID) ([]domain.PaymentSubmission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var submissions []domain.PaymentSubmission
	for _, p := range r.s.payments {
		application := r.s.applications[p.ApplicationID]
		if p.Status == domain.PaymentPendingReview && application.ExhibitionID == exhibitionID {
			submissions = append(submissions, p)
		}
	}
	return submissions, nil
}

// spyNotifier records every event so tests can assert what was emitted.
// Setting failErr makes every Notify call fail after recording.
type spyNotifier struct {
	mu      sync.Mutex
	events  []domain.Event
	failErr error
}

func (n *spyNotifier) Notify(_ context.Context, event domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.failErr
}

func (n *spyNotifier) types() []domain.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()

	types := make([]domain.EventType, len(n.events))
	for i, e := range n.events {
		types[i] = e.Type
	}
	return types
}

// fixture wires the services against one shared in-memory store and
// seeds a published exhibition with a three-stall type.
type fixture struct {
	store    *memStore
	notifier *spyNotifier

	exhibitions  *ExhibitionService
	stalls       *StallService
	applications *ApplicationService
	payments     *PaymentService

	organiser domain.User
	manager   domain.User
	brand     domain.User
	rival     domain.User

	exhibition domain.Exhibition
	stallType  domain.StallType
	unitID     uuid.UUID
}

func newFixture() *fixture {
	store := newMemStore()
	spy := &spyNotifier{}

	exhibitionRepo := &memExhibitionRepo{s: store}
	stallRepo := &memStallRepo{s: store}
	applicationRepo := &memApplicationRepo{s: store}
	paymentRepo := &memPaymentRepo{s: store}

	f := &fixture{
		store:        store,
		notifier:     spy,
		exhibitions:  NewExhibitionService(exhibitionRepo),
		stalls:       NewStallService(stallRepo, exhibitionRepo),
		applications: NewApplicationService(applicationRepo, stallRepo, exhibitionRepo, spy),
		payments:     NewPaymentService(paymentRepo, applicationRepo, spy),
		organiser:    domain.User{ID: uuid.New(), Role: domain.RoleOrganiser},
		manager:      domain.User{ID: uuid.New(), Role: domain.RoleManager},
		brand:        domain.User{ID: uuid.New(), Role: domain.RoleBrand},
		rival:        domain.User{ID: uuid.New(), Role: domain.RoleBrand},
	}

	f.unitID = uuid.New()
	store.units[f.unitID] = true

	f.exhibition = domain.Exhibition{
		ID:          uuid.New(),
		Name:        "Spring Fair",
		OrganiserID: f.organiser.ID,
		Status:      domain.ExhibitionPublished,
	}
	store.exhibitions[f.exhibition.ID] = f.exhibition

	f.stallType = domain.StallType{
		ID:           uuid.New(),
		ExhibitionID: f.exhibition.ID,
		Name:         "Standard",
		UnitID:       f.unitID,
		Price:        decimal.NewFromInt(250),
		Quantity:     3,
	}
	store.stallTypes[f.stallType.ID] = f.stallType
	store.typeOrder = append(store.typeOrder, f.stallType.ID)

	for n := 1; n <= f.stallType.Quantity; n++ {
		instance := domain.StallInstance{
			ID:             uuid.New(),
			StallTypeID:    f.stallType.ID,
			ExhibitionID:   f.exhibition.ID,
			InstanceNumber: n,
			Status:         domain.StallAvailable,
		}
		store.instances[instance.ID] = instance
	}

	return f
}

func (f *fixture) instanceByNumber(n int) domain.StallInstance {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, instance := range f.store.instances {
		if instance.StallTypeID == f.stallType.ID && instance.InstanceNumber == n {
			return instance
		}
	}
	return domain.StallInstance{}
}

func (f *fixture) instanceStatus(id uuid.UUID) domain.StallInstanceStatus {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.instances[id].Status
}
