package service

import (
	"errors"

	"github.com/RCodeTree/market-service/internal/model"

	"gorm.io/gorm"
)

type AddressInput struct {
	ReceiverName  string `json:"receiver_name"`
	ReceiverPhone string `json:"receiver_phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detail_address"`
	PostalCode    string `json:"postal_code"`
	AddressTag    string `json:"address_tag"`
	IsDefault     bool   `json:"is_default"`
}

func (in AddressInput) validate() error {
	if in.ReceiverName == "" || in.ReceiverPhone == "" || in.Province == "" ||
		in.City == "" || in.District == "" || in.DetailAddress == "" {
		return badRequest("收货信息不完整，请填写完整的收货信息")
	}
	if !phoneRe.MatchString(in.ReceiverPhone) {
		return badRequest("手机号格式不正确")
	}
	return nil
}

// ListAddresses 地址列表，默认地址排最前
func (s *UserService) ListAddresses(userID int64) ([]model.Address, error) {
	var addrs []model.Address
	err := s.db.Where("user_id = ? AND status = 1", userID).
		Order("is_default DESC, updated_at DESC").
		Find(&addrs).Error
	return addrs, err
}

// GetAddress 单条地址
func (s *UserService) GetAddress(userID, addressID int64) (*model.Address, error) {
	var addr model.Address
	err := s.db.Where("id = ? AND user_id = ? AND status = 1", addressID, userID).First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("地址不存在")
		}
		return nil, err
	}
	return &addr, nil
}

// CreateAddress 新增地址
// 设为默认时把该用户其它地址的默认标记清掉，两步在同一事务里
func (s *UserService) CreateAddress(userID int64, in AddressInput) (*model.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	addr := model.Address{
		UserID:        userID,
		ReceiverName:  in.ReceiverName,
		ReceiverPhone: in.ReceiverPhone,
		Province:      in.Province,
		City:          in.City,
		District:      in.District,
		DetailAddress: in.DetailAddress,
		PostalCode:    in.PostalCode,
		AddressTag:    in.AddressTag,
		IsDefault:     in.IsDefault,
		Status:        1,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&addr).Error; err != nil {
			return err
		}
		if addr.IsDefault {
			return tx.Model(&model.Address{}).
				Where("user_id = ? AND id <> ?", userID, addr.ID).
				Update("is_default", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

type UpdateAddressInput struct {
	ReceiverName  *string `json:"receiver_name"`
	ReceiverPhone *string `json:"receiver_phone"`
	Province      *string `json:"province"`
	City          *string `json:"city"`
	District      *string `json:"district"`
	DetailAddress *string `json:"detail_address"`
	PostalCode    *string `json:"postal_code"`
	AddressTag    *string `json:"address_tag"`
	IsDefault     *bool   `json:"is_default"`
}

// UpdateAddress 更新地址的白名单字段
func (s *UserService) UpdateAddress(userID, addressID int64, in UpdateAddressInput) (*model.Address, error) {
	if in.ReceiverPhone != nil && !phoneRe.MatchString(*in.ReceiverPhone) {
		return nil, badRequest("手机号格式不正确")
	}

	updates := map[string]interface{}{}
	if in.ReceiverName != nil {
		updates["receiver_name"] = *in.ReceiverName
	}
	if in.ReceiverPhone != nil {
		updates["receiver_phone"] = *in.ReceiverPhone
	}
	if in.Province != nil {
		updates["province"] = *in.Province
	}
	if in.City != nil {
		updates["city"] = *in.City
	}
	if in.District != nil {
		updates["district"] = *in.District
	}
	if in.DetailAddress != nil {
		updates["detail_address"] = *in.DetailAddress
	}
	if in.PostalCode != nil {
		updates["postal_code"] = *in.PostalCode
	}
	if in.AddressTag != nil {
		updates["address_tag"] = *in.AddressTag
	}
	if in.IsDefault != nil {
		updates["is_default"] = *in.IsDefault
	}
	if len(updates) == 0 {
		return nil, badRequest("没有可更新的字段")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ? AND status = 1", addressID, userID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("地址不存在")
		}
		if in.IsDefault != nil && *in.IsDefault {
			return tx.Model(&model.Address{}).
				Where("user_id = ? AND id <> ?", userID, addressID).
				Update("is_default", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetAddress(userID, addressID)
}

// DeleteAddress 软删除地址
func (s *UserService) DeleteAddress(userID, addressID int64) error {
	result := s.db.Model(&model.Address{}).
		Where("id = ? AND user_id = ? AND status = 1", addressID, userID).
		Update("status", 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("地址不存在")
	}
	return nil
}
