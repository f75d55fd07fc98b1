package entity

import "time"

// AccessGrant 检索端点的访问授权，持有签名密钥对
type AccessGrant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	FunctionName string     `json:"function_name"`
	APIKey       string     `json:"api_key"`
	Secret       string     `json:"-"`
	Revoked      bool       `json:"revoked"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewAccessGrant 创建新的访问授权
func NewAccessGrant(name, functionName, apiKey, secret string) *AccessGrant {
	return &AccessGrant{
		Name:         name,
		FunctionName: functionName,
		APIKey:       apiKey,
		Secret:       secret,
		CreatedAt:    time.Now(),
	}
}

// Revoke 吊销授权
func (g *AccessGrant) Revoke() {
	now := time.Now()
	g.Revoked = true
	g.RevokedAt = &now
}

// Usable 授权是否可用于验签
func (g *AccessGrant) Usable() bool {
	return !g.Revoked && g.Secret != ""
}
