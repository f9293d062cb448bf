package services

import "github.com/Dosada05/lobby-royale/models"

// CanMutateLobby решает, может ли пользователь изменять лобби:
// владелец или пользователь с ролью admin. Неизвестный пользователь — всегда нет.
func CanMutateLobby(lobby *models.Lobby, user *models.User) bool {
	if lobby == nil || user == nil {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	return user.ID == lobby.AdminID
}
