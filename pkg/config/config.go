package config

import (
	"log"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Mysql   MysqlConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Consul  ConsulConfig  `mapstructure:"consul"`
	Jwt     JwtConfig     `mapstructure:"jwt"`
	Mq      MqConfig      `mapstructure:"mq"`
	Elastic ElasticConfig `mapstructure:"elastic"`
	Jaeger  JaegerConfig  `mapstructure:"jaeger"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

type JwtConfig struct {
	Secret string `mapstructure:"secret"`
}

type MqConfig struct {
	Url string `mapstructure:"url"`
}

type ElasticConfig struct {
	Url string `mapstructure:"url"`
}

type JaegerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig 读取配置文件
func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	log.Printf("Config loaded successfully from %s", path)
	return &config, nil
}

// ApplyEnvOverrides 环境变量适配，容器部署时覆盖配置文件
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SERVICE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Service.Port = p
		}
	}
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Mysql.Host = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Mysql.Port = p
		}
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		c.Mysql.User = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Mysql.Password = v
	}
	if v := os.Getenv("MYSQL_DBNAME"); v != "" {
		c.Mysql.DbName = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("CONSUL_ADDRESS"); v != "" {
		c.Consul.Address = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Jwt.Secret = v
	}
	if v := os.Getenv("MQ_URL"); v != "" {
		c.Mq.Url = v
	}
	if v := os.Getenv("ELASTIC_URL"); v != "" {
		c.Elastic.Url = v
	}
	if v := os.Getenv("JAEGER_HOST"); v != "" {
		c.Jaeger.Endpoint = v
	}
}
