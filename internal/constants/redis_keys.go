package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityResult 提取结果实体
	EntityResult = "result"
	// EntityLock 分布式锁实体
	EntityLock = "lock"

	// KeyResultByMD5 按文件MD5缓存的提取结果 (STRING, JSON)
	// 格式: app:resume:result:{md5}
	KeyResultByMD5 = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityResult + ":%s"

	// KeyExtractLock 同一文件并发提取时的互斥锁 (STRING)
	// 格式: app:resume:lock:{md5}
	KeyExtractLock = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityLock + ":%s"
)
