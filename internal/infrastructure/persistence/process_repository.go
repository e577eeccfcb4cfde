package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProcessRepository implements integration.ProcessRepository using GORM
type GormProcessRepository struct {
	db *gorm.DB
}

// NewGormProcessRepository creates a new GormProcessRepository
func NewGormProcessRepository(db *gorm.DB) *GormProcessRepository {
	return &GormProcessRepository{db: db}
}

func preloadFields(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// ---------------------------------------------------------------------------
// ProcessReader implementation
// ---------------------------------------------------------------------------

// FindByInterface returns the processes of an interface ordered by process order
func (r *GormProcessRepository) FindByInterface(ctx context.Context, interfaceName string) ([]integration.IntegrationProcess, error) {
	var processModels []models.IntegrationProcessModel
	if err := r.db.WithContext(ctx).
		Preload("Fields", preloadFields).
		Where("interface_name = ?", interfaceName).
		Order("process_order ASC, process_name ASC").
		Find(&processModels).Error; err != nil {
		return nil, integration.NewPersistenceFailure(err)
	}

	if len(processModels) == 0 {
		return nil, integration.ErrConfigurationNotFound.WithMessage(
			fmt.Sprintf("integration: no process configured for interface %s", interfaceName))
	}
	return toDomainProcesses(processModels)
}

// FindOutbound returns the process named name or, failing that, the first
// templated process of the interface named name
func (r *GormProcessRepository) FindOutbound(ctx context.Context, name string) (*integration.IntegrationProcess, error) {
	var model models.IntegrationProcessModel
	err := r.db.WithContext(ctx).
		Preload("Fields", preloadFields).
		Where("process_name = ?", name).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.db.WithContext(ctx).
			Preload("Fields", preloadFields).
			Where("interface_name = ? AND xml_template IS NOT NULL AND xml_template <> ''", name).
			Order("process_order ASC, process_name ASC").
			First(&model).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrConfigurationNotFound.WithMessage(
				fmt.Sprintf("integration: no outbound process configured for %s", name))
		}
		return nil, integration.NewPersistenceFailure(err)
	}

	if err := model.Validate(); err != nil {
		return nil, integration.ErrConfigurationInvalid.Wrap(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every configured process with its fields
func (r *GormProcessRepository) FindAll(ctx context.Context) ([]integration.IntegrationProcess, error) {
	var processModels []models.IntegrationProcessModel
	if err := r.db.WithContext(ctx).
		Preload("Fields", preloadFields).
		Order("interface_name ASC, process_order ASC, process_name ASC").
		Find(&processModels).Error; err != nil {
		return nil, integration.NewPersistenceFailure(err)
	}
	return toDomainProcesses(processModels)
}

func toDomainProcesses(processModels []models.IntegrationProcessModel) ([]integration.IntegrationProcess, error) {
	processes := make([]integration.IntegrationProcess, len(processModels))
	for i := range processModels {
		if err := processModels[i].Validate(); err != nil {
			return nil, integration.ErrConfigurationInvalid.Wrap(err)
		}
		processes[i] = *processModels[i].ToDomain()
	}
	return processes, nil
}

// ---------------------------------------------------------------------------
// ProcessWriter implementation
// ---------------------------------------------------------------------------

// Save creates or replaces a process together with its fields.
// Fields are rewritten as a whole so their IDs keep the submitted order.
func (r *GormProcessRepository) Save(ctx context.Context, process *integration.IntegrationProcess) error {
	var model models.IntegrationProcessModel
	model.FromDomain(process)
	if err := model.Validate(); err != nil {
		return integration.ErrConfigurationInvalid.Wrap(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := model.Fields
		model.Fields = nil

		if err := tx.Omit("Fields").Save(&model).Error; err != nil {
			return err
		}
		if err := tx.Where("process_name = ?", model.ProcessName).
			Delete(&models.IntegrationFieldModel{}).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		for i := range fields {
			fields[i].ID = 0
		}
		if err := tx.Create(&fields).Error; err != nil {
			return err
		}

		for i := range fields {
			process.Fields[i].ID = fields[i].ID
			process.Fields[i].ProcessName = model.ProcessName
		}
		return nil
	})
	if err != nil {
		return integration.NewPersistenceFailure(err)
	}
	return nil
}

// Ensure GormProcessRepository implements the interface
var _ integration.ProcessRepository = (*GormProcessRepository)(nil)
