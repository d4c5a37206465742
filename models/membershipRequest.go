package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MembershipRequest is a venue's application to join the competition. The
// public submission form writes one; an admin decision either rejects it or
// provisions the venue, its first staff account and the login in one shot.
type MembershipRequest struct {
	ID             string           `gorm:"type:char(36);primary_key" json:"id"`
	VenueName      string           `gorm:"size:100;not null" json:"venue_name" binding:"required"`
	Category       VenueCategory    `gorm:"type:enum('Bar','Nightclub');not null" json:"category" binding:"required"`
	District       string           `gorm:"size:100" json:"district"`
	City           string           `gorm:"size:100;default:'Ouagadougou'" json:"city"`
	Address        string           `json:"address"`
	ManagerName    string           `gorm:"size:50;not null" json:"manager_name" binding:"required"`
	ManagerSurname string           `gorm:"size:50" json:"manager_surname"`
	Handle         string           `gorm:"size:30;not null;unique" json:"handle" binding:"required"`
	Phone          string           `gorm:"size:20;not null" json:"phone" binding:"required"`
	Email          string           `gorm:"size:100;not null" json:"email" binding:"required"`
	VideoUrl       string           `json:"video_url"`
	ThumbnailUrl   string           `json:"thumbnail_url"`
	Status         MembershipStatus `gorm:"size:10;not null;default:'Pending'" json:"status"`
	DecidedById    *int             `json:"decided_by_id,omitempty"`
	DecidedAt      *time.Time       `json:"decided_at,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (r *MembershipRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type NewMembershipRequest struct {
	VenueName      string `json:"venue_name" binding:"required"`
	Category       string `json:"category" binding:"required"`
	District       string `json:"district"`
	City           string `json:"city"`
	Address        string `json:"address"`
	ManagerName    string `json:"manager_name" binding:"required"`
	ManagerSurname string `json:"manager_surname"`
	Handle         string `json:"handle" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Email          string `json:"email" binding:"required"`
}

// CreateMembershipRequest validates and stores a public application.
func CreateMembershipRequest(ctx context.Context, input *NewMembershipRequest) (*MembershipRequest, error) {
	db := config.GetDB()

	category, err := ParseVenueCategory(input.Category)
	if err != nil {
		return nil, err
	}

	input.Handle = html.EscapeString(strings.TrimSpace(input.Handle))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Handle == "" {
		return nil, errors.New("handle is required")
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}
	if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
		return nil, errors.New("invalid phone number")
	}
	if err := ValidateHandleUnique(ctx, input.Handle); err != nil {
		return nil, err
	}

	city := input.City
	if city == "" {
		city = "Ouagadougou"
	}

	request := MembershipRequest{
		VenueName:      input.VenueName,
		Category:       category,
		District:       input.District,
		City:           city,
		Address:        input.Address,
		ManagerName:    input.ManagerName,
		ManagerSurname: input.ManagerSurname,
		Handle:         input.Handle,
		Phone:          input.Phone,
		Email:          input.Email,
		Status:         MembershipStatusPending,
	}
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func ListMembershipRequests(ctx context.Context, status MembershipStatus) ([]*MembershipRequest, error) {
	db := config.GetDB()
	var requests []*MembershipRequest
	q := db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func GetMembershipRequestById(ctx context.Context, id string) (*MembershipRequest, error) {
	db := config.GetDB()
	var request MembershipRequest
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&request).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &request, nil
}

// ApproveMembershipRequest provisions everything an accepted venue needs:
// the venue row, a staff login with a generated password, and the staff
// record, all in one transaction. The credentials mail goes out after commit;
// a mail failure never rolls the approval back.
func ApproveMembershipRequest(ctx context.Context, id string, adminId int) (*MembershipRequest, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	request, err := GetMembershipRequestById(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != MembershipStatusPending {
		return nil, errors.New("request is already decided")
	}

	password := utils.GenerateRandomPassword(12)
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		venue := Venue{
			Name:     request.VenueName,
			Category: request.Category,
			District: request.District,
			City:     request.City,
			Address:  request.Address,
			Phone:    request.Phone,
			OwnerId:  adminId,
			IsActive: utils.NewTrue(),
			VideoUrl: request.VideoUrl,
		}
		if err := tx.Create(&venue).Error; err != nil {
			return err
		}

		email := request.Email
		user := User{
			Username: request.Handle,
			Name:     strings.TrimSpace(request.ManagerName + " " + request.ManagerSurname),
			Email:    &email,
			Password: string(hashed),
			Role:     UserRoleStaff,
			IsActive: utils.NewTrue(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		staff := StaffMember{
			UserId:        user.ID,
			Handle:        request.Handle,
			Name:          request.ManagerName,
			Surname:       request.ManagerSurname,
			Phone:         request.Phone,
			VenueId:       venue.ID,
			Function:      StaffFunctionManager,
			PasswordReset: utils.NewFalse(),
		}
		if err := tx.Create(&staff).Error; err != nil {
			return err
		}

		now := time.Now()
		request.Status = MembershipStatusApproved
		request.DecidedById = &adminId
		request.DecidedAt = &now
		return tx.Model(&MembershipRequest{}).Where("id = ?", request.ID).Updates(map[string]interface{}{
			"status":        request.Status,
			"decided_by_id": adminId,
			"decided_at":    now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Votre établissement <b>%s</b> a été accepté.</p><p>Identifiant: <b>%s</b><br>Mot de passe: <b>%s</b></p><p>Pensez à changer votre mot de passe à la première connexion.</p>",
		request.ManagerName, request.VenueName, request.Handle, password)
	if err := config.SendMail(request.Email, "Votre adhésion est acceptée", body); err != nil {
		config.LogError(logger, "models", "ApproveMembershipRequest", "credentials mail", logrus.Fields{"request": request.ID}, err)
	}
	return request, nil
}

// RejectMembershipRequest marks a pending request rejected and notifies the
// applicant, best effort.
func RejectMembershipRequest(ctx context.Context, id string, adminId int) (*MembershipRequest, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	request, err := GetMembershipRequestById(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != MembershipStatusPending {
		return nil, errors.New("request is already decided")
	}

	now := time.Now()
	err = db.WithContext(ctx).Model(&MembershipRequest{}).Where("id = ?", request.ID).Updates(map[string]interface{}{
		"status":        MembershipStatusRejected,
		"decided_by_id": adminId,
		"decided_at":    now,
	}).Error
	if err != nil {
		return nil, err
	}
	request.Status = MembershipStatusRejected
	request.DecidedById = &adminId
	request.DecidedAt = &now

	body := fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Votre demande d'adhésion pour <b>%s</b> n'a pas été retenue.</p>",
		request.ManagerName, request.VenueName)
	if err := config.SendMail(request.Email, "Votre demande d'adhésion", body); err != nil {
		config.LogError(logger, "models", "RejectMembershipRequest", "rejection mail", logrus.Fields{"request": request.ID}, err)
	}
	return request, nil
}
